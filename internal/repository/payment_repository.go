package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-backend/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create сохраняет платёж. Уникальный индекс по order_id гарантирует
// не больше одного платежа на заказ.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, buyer_id, amount, platform_charges, tax, total_amount,
			payment_method, transaction_id, status, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.OrderID, payment.BuyerID, payment.Amount, payment.PlatformCharges,
		payment.Tax, payment.TotalAmount, payment.PaymentMethod, payment.TransactionID,
		payment.Status, payment.PaymentDate,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("payment repository: create %w", err)
	}
	return nil
}

var ErrDuplicatePayment = errors.New("payment already exists for order")

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by order %w", err)
	}
	return &payment, nil
}

// ExistsForOrder сообщает, принят ли уже платёж по заказу.
func (r *PaymentRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		return false, fmt.Errorf("payment repository: exists for order %w", err)
	}
	return count > 0, nil
}

// Release выплачивает эскроу исполнителю. Операция идемпотентна: условие
// по статусу в WHERE делает повторный вызов безвредным, при уже
// выплаченном платеже возвращается текущая строка.
func (r *PaymentRepository) Release(ctx context.Context, orderID uuid.UUID, now time.Time) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `
		UPDATE payments SET status = 'released', released_at = $2, updated_at = NOW()
		WHERE order_id = $1 AND status = 'escrow'
		RETURNING *
	`, orderID, now)
	if err == nil {
		return &payment, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment repository: release %w", err)
	}
	return r.GetByOrderID(ctx, orderID)
}

// Refund возвращает эскроу покупателю по ставке отмены. Идемпотентность
// устроена так же, как в Release.
func (r *PaymentRepository) Refund(ctx context.Context, orderID uuid.UUID, percent int, amount float64, reason string, now time.Time) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `
		UPDATE payments SET status = 'refunded', refund_percent = $2, refunded_amount = $3,
			refund_reason = $4, refunded_at = $5, updated_at = NOW()
		WHERE order_id = $1 AND status = 'escrow'
		RETURNING *
	`, orderID, percent, amount, reason, now)
	if err == nil {
		return &payment, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment repository: refund %w", err)
	}
	return r.GetByOrderID(ctx, orderID)
}
