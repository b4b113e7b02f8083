package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы спора. Прогресс open → in_progress → resolved ведёт внешний
// процесс поддержки; сервис только фиксирует и отдаёт его.
const (
	DisputeStatusOpen       = "open"
	DisputeStatusInProgress = "in_progress"
	DisputeStatusResolved   = "resolved"
)

// Dispute — жалоба по заказу. Споров по одному заказу может быть несколько,
// каждый отслеживается независимо и не меняет статус заказа или платежа.
type Dispute struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OrderID     uuid.UUID  `db:"order_id" json:"order_id"`
	OrderNo     string     `db:"order_no" json:"order_no"`
	InitiatorID uuid.UUID  `db:"initiator_id" json:"initiator_id"`
	Subject     string     `db:"subject" json:"subject"`
	Description string     `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"`
	Resolution  *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	Attachments []DisputeAttachment `json:"attachments,omitempty"`
}

// DisputeAttachment описывает файл-доказательство, приложенный к спору.
type DisputeAttachment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DisputeID uuid.UUID  `db:"dispute_id" json:"dispute_id"`
	MediaID   uuid.UUID  `db:"media_id" json:"media_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Media     *MediaFile `json:"media,omitempty"`
}
