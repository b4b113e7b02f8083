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

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create сохраняет спор вместе с вложениями в одной транзакции.
func (r *DisputeRepository) Create(ctx context.Context, dispute *models.Dispute, attachmentIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO disputes (order_id, order_no, initiator_id, subject, description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, dispute.OrderID, dispute.OrderNo, dispute.InitiatorID,
			dispute.Subject, dispute.Description, dispute.Status,
		).Scan(&dispute.ID, &dispute.CreatedAt)
		if err != nil {
			return fmt.Errorf("dispute repository: create %w", err)
		}
		for _, mediaID := range attachmentIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO dispute_attachments (dispute_id, media_id) VALUES ($1, $2)
			`, dispute.ID, mediaID)
			if err != nil {
				return fmt.Errorf("dispute repository: attach file %w", err)
			}
		}
		return nil
	})
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := common.GetByID[models.Dispute](ctx, r.db, "disputes", id, ErrDisputeNotFound)
	if err != nil {
		return nil, err
	}
	if err := r.loadAttachments(ctx, dispute); err != nil {
		return nil, err
	}
	return dispute, nil
}

// ListByOrder возвращает все споры по заказу, новые первыми.
func (r *DisputeRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE order_id = $1 ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by order %w", err)
	}
	for i := range disputes {
		if err := r.loadAttachments(ctx, &disputes[i]); err != nil {
			return nil, err
		}
	}
	return disputes, nil
}

// UpdateStatus меняет статус спора, при разрешении фиксируя итог и время.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.GetContext(ctx, &dispute, `
		UPDATE disputes SET status = $2, resolution = $3, resolved_at = $4
		WHERE id = $1
		RETURNING *
	`, id, status, resolution, resolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: update status %w", err)
	}
	if err := r.loadAttachments(ctx, &dispute); err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *DisputeRepository) loadAttachments(ctx context.Context, dispute *models.Dispute) error {
	err := r.db.SelectContext(ctx, &dispute.Attachments, `
		SELECT id, dispute_id, media_id, created_at FROM dispute_attachments WHERE dispute_id = $1
	`, dispute.ID)
	if err != nil {
		return fmt.Errorf("dispute repository: load attachments %w", err)
	}
	return nil
}
