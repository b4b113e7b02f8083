package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/repository/common"
)

var ErrProposalNotFound = errors.New("proposal not found")

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет отклик вместе с вложениями.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal, attachmentIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO proposals (job_id, seller_id, amount, cover_letter, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			proposal.JobID, proposal.SellerID, proposal.Amount, proposal.CoverLetter, proposal.Status,
		).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
		if err != nil {
			return fmt.Errorf("proposal repository: create %w", err)
		}

		for _, mediaID := range attachmentIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO proposal_attachments (proposal_id, media_id) VALUES ($1, $2)`,
				proposal.ID, mediaID); err != nil {
				return fmt.Errorf("proposal repository: create attachment %w", err)
			}
		}
		return nil
	})
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetByID[models.Proposal](ctx, r.db, "proposals", id, ErrProposalNotFound)
}

// ListByJob возвращает отклики на объявление.
func (r *ProposalRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE job_id = $1 ORDER BY created_at DESC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by job %w", err)
	}
	return proposals, nil
}

// ListByBuyer возвращает отклики по всем объявлениям покупателя.
func (r *ProposalRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT p.* FROM proposals p
		JOIN jobs j ON p.job_id = j.id
		WHERE j.buyer_id = $1
		ORDER BY p.created_at DESC LIMIT $2 OFFSET $3
	`, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by buyer %w", err)
	}
	return proposals, nil
}

// ListBySeller возвращает отклики исполнителя.
func (r *ProposalRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.SelectContext(ctx, &proposals, `
		SELECT * FROM proposals WHERE seller_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("proposal repository: list by seller %w", err)
	}
	return proposals, nil
}

// ExistsForJobAndSeller проверяет, откликался ли исполнитель на объявление.
func (r *ProposalRepository) ExistsForJobAndSeller(ctx context.Context, jobID, sellerID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM proposals WHERE job_id = $1 AND seller_id = $2`, jobID, sellerID)
	if err != nil {
		return false, fmt.Errorf("proposal repository: exists %w", err)
	}
	return count > 0, nil
}

// UpdateBuyerDecision записывает (или сбрасывает при nil) пометку покупателя.
func (r *ProposalRepository) UpdateBuyerDecision(ctx context.Context, id uuid.UUID, decision *string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.GetContext(ctx, &proposal, `
		UPDATE proposals SET buyer_decision = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, decision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: update buyer decision %w", err)
	}
	return &proposal, nil
}

// UpdateStatus меняет статус отклика.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("proposal repository: update status %w", err)
	}
	return requireAffected(result, ErrProposalNotFound)
}
