package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment — запись платёжного реестра, привязанная к заказу один к одному.
// Создаётся в статусе escrow и переходит ровно один раз либо в released,
// либо в refunded. Само движение денег выполняет внешний процессинг,
// реестр хранит только состояние.
type Payment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	OrderID         uuid.UUID `db:"order_id" json:"order_id"`
	BuyerID         uuid.UUID `db:"buyer_id" json:"buyer_id"`
	Amount          float64   `db:"amount" json:"amount"`
	PlatformCharges float64   `db:"platform_charges" json:"platform_charges"`
	Tax             float64   `db:"tax" json:"tax"`
	TotalAmount     float64   `db:"total_amount" json:"total_amount"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	Status          string    `db:"status" json:"status"`
	TransactionID   string    `db:"transaction_id" json:"transaction_id"`
	PaymentDate     time.Time `db:"payment_date" json:"payment_date"`

	ReleasedAt *time.Time `db:"released_at" json:"released_at,omitempty"`

	// Возврат хранится явно: причина, ставка и посчитанная сумма,
	// а не только терминальный статус.
	RefundReason   *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundPercent  *int       `db:"refund_percent" json:"refund_percent,omitempty"`
	RefundedAmount *float64   `db:"refunded_amount" json:"refunded_amount,omitempty"`
	RefundedAt     *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
