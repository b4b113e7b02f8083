package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/talent-backend/internal/models"
)

var ErrMediaNotFound = errors.New("media file not found")

type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет метаданные загруженного файла.
func (r *MediaRepository) Create(ctx context.Context, file *models.MediaFile) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO media_files (user_id, file_name, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, file.UserID, file.FileName, file.FilePath, file.FileType, file.FileSize,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	err := r.db.GetContext(ctx, &file, `SELECT * FROM media_files WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("media repository: get by id %w", err)
	}
	return &file, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("media repository: delete %w", err)
	}
	return requireAffected(result, ErrMediaNotFound)
}

// ListByIDs возвращает файлы из списка идентификаторов. Отсутствующие
// идентификаторы просто пропускаются, совпадение количества проверяет
// вызывающий.
func (r *MediaRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MediaFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	var files []models.MediaFile
	err := r.db.SelectContext(ctx, &files, `
		SELECT * FROM media_files WHERE id = ANY($1)
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("media repository: list by ids %w", err)
	}
	return files, nil
}
