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

var ErrJobNotFound = errors.New("job not found")

type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create сохраняет объявление вместе с вложениями.
func (r *JobRepository) Create(ctx context.Context, job *models.Job, attachmentIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO jobs (buyer_id, title, description, price, negotiable, status,
				event_date, location_name, location_address, latitude, longitude,
				categories, genres, languages, gender, radius_km)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			job.BuyerID, job.Title, job.Description, job.Price, job.Negotiable, job.Status,
			job.EventDate, job.LocationName, job.LocationAddress, job.Latitude, job.Longitude,
			job.Categories, job.Genres, job.Languages, job.Gender, job.RadiusKM,
		).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
		if err != nil {
			return fmt.Errorf("job repository: create %w", err)
		}

		for _, mediaID := range attachmentIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO job_attachments (job_id, media_id) VALUES ($1, $2)`,
				job.ID, mediaID); err != nil {
				return fmt.Errorf("job repository: create attachment %w", err)
			}
		}
		return nil
	})
}

// GetByID возвращает объявление с вложениями.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id %w", err)
	}

	attachments, err := r.listAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Attachments = attachments
	return &job, nil
}

// ListByBuyer возвращает объявления покупателя, опционально по статусу.
func (r *JobRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status string) ([]models.Job, error) {
	var jobs []models.Job
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &jobs, `
			SELECT * FROM jobs WHERE buyer_id = $1 AND status = $2 ORDER BY created_at DESC
		`, buyerID, status)
	} else {
		err = r.db.SelectContext(ctx, &jobs, `
			SELECT * FROM jobs WHERE buyer_id = $1 ORDER BY created_at DESC
		`, buyerID)
	}
	if err != nil {
		return nil, fmt.Errorf("job repository: list by buyer %w", err)
	}
	return jobs, nil
}

// Update перезаписывает изменяемые поля объявления.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET title = $2, description = $3, price = $4, negotiable = $5,
			event_date = $6, location_name = $7, location_address = $8,
			latitude = $9, longitude = $10, categories = $11, genres = $12,
			languages = $13, gender = $14, radius_km = $15, updated_at = NOW()
		WHERE id = $1
	`, job.ID, job.Title, job.Description, job.Price, job.Negotiable,
		job.EventDate, job.LocationName, job.LocationAddress,
		job.Latitude, job.Longitude, job.Categories, job.Genres,
		job.Languages, job.Gender, job.RadiusKM)
	if err != nil {
		return fmt.Errorf("job repository: update %w", err)
	}
	return requireAffected(result, ErrJobNotFound)
}

// UpdateStatus меняет статус объявления.
func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("job repository: update status %w", err)
	}
	return requireAffected(result, ErrJobNotFound)
}

// Delete физически удаляет объявление. Допустимость удаления проверяет сервис.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("job repository: delete %w", err)
	}
	return requireAffected(result, ErrJobNotFound)
}

func (r *JobRepository) listAttachments(ctx context.Context, jobID uuid.UUID) ([]models.JobAttachment, error) {
	var attachments []models.JobAttachment
	err := r.db.SelectContext(ctx, &attachments, `
		SELECT id, job_id, media_id, created_at FROM job_attachments WHERE job_id = $1
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("job repository: list attachments %w", err)
	}
	return attachments, nil
}

// requireAffected превращает UPDATE/DELETE без затронутых строк в notFound.
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
