package models

import (
	"time"

	"github.com/google/uuid"
)

// Order — принятое обязательство, созданное из акцептованного предложения.
// Расписание (дата события, место) копируется из объявления в момент
// создания и дальше живёт своей жизнью: правки объявления заказ не трогают.
type Order struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderNo    string    `db:"order_no" json:"order_no"`
	JobID      uuid.UUID `db:"job_id" json:"job_id"`
	ProposalID uuid.UUID `db:"proposal_id" json:"proposal_id"`
	BuyerID    uuid.UUID `db:"buyer_id" json:"buyer_id"`
	SellerID   uuid.UUID `db:"seller_id" json:"seller_id"`
	Status     string    `db:"status" json:"status"`
	Amount     float64   `db:"amount" json:"amount"`

	EventDate       *time.Time `db:"event_date" json:"event_date,omitempty"`
	LocationName    *string    `db:"location_name" json:"location_name,omitempty"`
	LocationAddress *string    `db:"location_address" json:"location_address,omitempty"`

	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`

	// Подзапись о подтверждении сдачи. RejectedAt и причина сохраняются
	// и после возврата заказа в pending — для аудита.
	CompletionRequestedAt *time.Time `db:"completion_requested_at" json:"completion_requested_at,omitempty"`
	ApprovedAt            *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt            *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason       *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`

	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CompletionWindowInfo — вычисляемое представление 48-часового окна
// подтверждения. Никогда не хранится, собирается на чтении.
type CompletionWindowInfo struct {
	Deadline time.Time `json:"deadline"`
	Days     int       `json:"days"`
	Hours    int       `json:"hours"`
	Minutes  int       `json:"minutes"`
	Expired  bool      `json:"expired"`
}
