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
	"github.com/ignatzorin/talent-backend/internal/repository/common"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет заказ. Человекочитаемый номер генерируется базой
// из последовательности.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (job_id, proposal_id, buyer_id, seller_id, status, amount,
			event_date, location_name, location_address, order_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			'ORD-' || LPAD(nextval('order_no_seq')::TEXT, 6, '0'))
		RETURNING id, order_no, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		order.JobID, order.ProposalID, order.BuyerID, order.SellerID,
		order.Status, order.Amount, order.EventDate, order.LocationName, order.LocationAddress,
	).Scan(&order.ID, &order.OrderNo, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("order repository: create %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return common.GetByID[models.Order](ctx, r.db, "orders", id, ErrOrderNotFound)
}

// ListByBuyer возвращает заказы покупателя.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by buyer %w", err)
	}
	return orders, nil
}

// ListBySeller возвращает заказы исполнителя.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by seller %w", err)
	}
	return orders, nil
}

// HasActiveOrderForJob проверяет, есть ли по объявлению незавершённый заказ.
// У объявления может быть только один активный заказ.
func (r *OrderRepository) HasActiveOrderForJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM orders WHERE job_id = $1 AND status NOT IN ('complete', 'cancelled')
	`, jobID)
	if err != nil {
		return false, fmt.Errorf("order repository: has active order %w", err)
	}
	return count > 0, nil
}

// MarkDelivered переводит pending-заказ в delivered, ставя отметки сдачи
// и открытия окна подтверждения. Условие по статусу в WHERE защищает от
// гонки двух одновременных сдач.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET status = 'delivered', delivered_at = $2,
			completion_requested_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: mark delivered %w", err)
	}
	return &order, nil
}

// Approve завершает сданный заказ.
func (r *OrderRepository) Approve(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET status = 'complete', approved_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'delivered'
		RETURNING *
	`, id, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: approve %w", err)
	}
	return &order, nil
}

// Reject возвращает сданный заказ в pending, сохраняя причину и отметку
// отклонения для аудита. Отметка сдачи обнуляется: окно откроется заново
// при повторной сдаче.
func (r *OrderRepository) Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET status = 'pending', rejected_at = $2, rejection_reason = $3,
			delivered_at = NULL, completion_requested_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'delivered'
		RETURNING *
	`, id, now, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: reject %w", err)
	}
	return &order, nil
}

// Cancel терминально отменяет заказ из pending или delivered.
func (r *OrderRepository) Cancel(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET status = 'cancelled', cancellation_reason = $3,
			cancelled_at = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'delivered')
		RETURNING *
	`, id, now, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: cancel %w", err)
	}
	return &order, nil
}
