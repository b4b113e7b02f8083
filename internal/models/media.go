package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaFile описывает загруженный файл.
// Дескриптор вложения в API: имя, путь, тип содержимого и размер в байтах.
type MediaFile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FileName  string     `db:"file_name" json:"file_name"`
	FilePath  string     `db:"file_path" json:"file_path"`
	FileType  string     `db:"file_type" json:"file_type"`
	FileSize  int64      `db:"file_size" json:"file_size"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
