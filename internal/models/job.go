package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Job описывает объявление покупателя о поиске исполнителя.
type Job struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BuyerID     uuid.UUID `db:"buyer_id" json:"buyer_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Negotiable  bool      `db:"negotiable" json:"negotiable"`
	Status      string    `db:"status" json:"status"`

	// Запланированное событие: дата со временем и место проведения.
	EventDate       *time.Time `db:"event_date" json:"event_date,omitempty"`
	LocationName    *string    `db:"location_name" json:"location_name,omitempty"`
	LocationAddress *string    `db:"location_address" json:"location_address,omitempty"`
	Latitude        *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude       *float64   `db:"longitude" json:"longitude,omitempty"`

	// Фильтры подбора исполнителей.
	Categories pq.StringArray `db:"categories" json:"categories"`
	Genres     pq.StringArray `db:"genres" json:"genres"`
	Languages  pq.StringArray `db:"languages" json:"languages"`
	Gender     *string        `db:"gender" json:"gender,omitempty"`
	RadiusKM   *float64       `db:"radius_km" json:"radius_km,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Attachments    []JobAttachment `json:"attachments,omitempty"`
	ProposalsCount *int            `db:"proposals_count" json:"proposals_count,omitempty"`
}

// JobAttachment описывает файл, прикреплённый к объявлению.
type JobAttachment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	JobID     uuid.UUID  `db:"job_id" json:"job_id"`
	MediaID   uuid.UUID  `db:"media_id" json:"media_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Media     *MediaFile `json:"media,omitempty"`
}
