package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
)

// JobRepository описывает зависимости JobService от слоя хранилища.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job, attachmentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, status string) ([]models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobService ведёт жизненный цикл объявления: draft → active ⇄ paused → closed.
type JobService struct {
	repo JobRepository
	now  func() time.Time
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo, now: time.Now}
}

// JobInput содержит данные объявления при создании и правке.
type JobInput struct {
	Title           string
	Description     *string
	Price           float64
	Negotiable      bool
	EventDate       *time.Time
	LocationName    *string
	LocationAddress *string
	Latitude        *float64
	Longitude       *float64
	Categories      []string
	Genres          []string
	Languages       []string
	Gender          *string
	RadiusKM        *float64
	AttachmentIDs   []uuid.UUID
}

// validate собирает все ошибки полей за один проход, чтобы клиент получил
// полный список, а не первую попавшуюся.
func (in JobInput) validate(now time.Time) error {
	var fields []apperror.FieldError
	fields = validation.FieldLength(fields, "title", in.Title,
		validation.MinJobTitleLength, validation.MaxJobTitleLength)
	if in.Description != nil {
		fields = validation.FieldLength(fields, "description", *in.Description,
			0, validation.MaxJobDescriptionLength)
	}
	fields = validation.FieldAmount(fields, "price", in.Price)
	if in.EventDate != nil {
		fields = validation.FieldFutureDate(fields, "event_date", *in.EventDate, now)
	}
	if in.RadiusKM != nil && (*in.RadiusKM <= 0 || *in.RadiusKM > validation.MaxRadiusKM) {
		fields = append(fields, apperror.FieldError{
			Field: "radius_km", Message: "радиус вне допустимого диапазона",
		})
	}
	return validation.Check(fields)
}

func (in JobInput) apply(job *models.Job) {
	job.Title = in.Title
	job.Description = in.Description
	job.Price = in.Price
	job.Negotiable = in.Negotiable
	job.EventDate = in.EventDate
	job.LocationName = in.LocationName
	job.LocationAddress = in.LocationAddress
	job.Latitude = in.Latitude
	job.Longitude = in.Longitude
	job.Categories = in.Categories
	job.Genres = in.Genres
	job.Languages = in.Languages
	job.Gender = in.Gender
	job.RadiusKM = in.RadiusKM
}

// Create создаёт объявление. asDraft выбирает стартовый статус:
// черновик или сразу публикация.
func (s *JobService) Create(ctx context.Context, buyerID uuid.UUID, in JobInput, asDraft bool) (*models.Job, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}

	job := &models.Job{BuyerID: buyerID, Status: string(valueobject.JobStatusActive)}
	if asDraft {
		job.Status = string(valueobject.JobStatusDraft)
	}
	in.apply(job)

	if err := s.repo.Create(ctx, job, in.AttachmentIDs); err != nil {
		return nil, err
	}
	return job, nil
}

// Get возвращает объявление по идентификатору.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByBuyer возвращает объявления покупателя, опционально по статусу.
func (s *JobService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status string) ([]models.Job, error) {
	if status != "" {
		if _, err := valueobject.NewJobStatus(status); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByBuyer(ctx, buyerID, status)
}

// Update правит объявление владельца. Заказы, уже созданные из этого
// объявления, правка не затрагивает: расписание в них снято снимком.
func (s *JobService) Update(ctx context.Context, buyerID, id uuid.UUID, in JobInput) (*models.Job, error) {
	job, err := s.owned(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}

	in.apply(job)
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ChangeStatus переводит объявление по таблице переходов.
func (s *JobService) ChangeStatus(ctx context.Context, buyerID, id uuid.UUID, status string) (*models.Job, error) {
	job, err := s.owned(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}

	next, err := valueobject.NewJobStatus(status)
	if err != nil {
		return nil, err
	}

	current := valueobject.JobStatus(job.Status)
	if !current.CanTransitionTo(next) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			"переход объявления "+job.Status+" → "+status+" недопустим")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	job.Status = status
	return job, nil
}

// Delete физически удаляет объявление. Допустимо только для draft и closed,
// опубликованные объявления сначала закрываются.
func (s *JobService) Delete(ctx context.Context, buyerID, id uuid.UUID) error {
	job, err := s.owned(ctx, buyerID, id)
	if err != nil {
		return err
	}

	if !valueobject.JobStatus(job.Status).IsDeletable() {
		return apperror.New(apperror.ErrCodeInvalidState,
			"объявление в статусе "+job.Status+" нельзя удалить, только закрыть")
	}

	return s.repo.Delete(ctx, id)
}

func (s *JobService) owned(ctx context.Context, buyerID, id uuid.UUID) (*models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	return job, nil
}
