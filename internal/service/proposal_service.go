package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
	"github.com/ignatzorin/talent-backend/internal/ws"
)

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	NotifyUser(userID uuid.UUID, event string, data any) error
}

// ProposalRepository описывает зависимости ProposalService от слоя хранилища.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal, attachmentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Proposal, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Proposal, error)
	ExistsForJobAndSeller(ctx context.Context, jobID, sellerID uuid.UUID) (bool, error)
	UpdateBuyerDecision(ctx context.Context, id uuid.UUID, decision *string) (*models.Proposal, error)
}

// JobRepoForProposal — доступ к объявлениям из сервиса предложений.
type JobRepoForProposal interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ProposalService ведёт отклики исполнителей и пометки покупателя.
type ProposalService struct {
	repo ProposalRepository
	jobs JobRepoForProposal
	hub  WSNotifier
}

func NewProposalService(repo ProposalRepository, jobs JobRepoForProposal) *ProposalService {
	return &ProposalService{repo: repo, jobs: jobs}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *ProposalService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// ProposalInput содержит данные отклика.
type ProposalInput struct {
	Amount        float64
	CoverLetter   string
	AttachmentIDs []uuid.UUID
}

// Create создаёт отклик. Откликаться можно только на активное объявление,
// не на своё и не повторно.
func (s *ProposalService) Create(ctx context.Context, sellerID, jobID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	var fields []apperror.FieldError
	fields = validation.FieldAmount(fields, "amount", in.Amount)
	fields = validation.FieldLength(fields, "cover_letter", in.CoverLetter,
		validation.MinProposalCoverLength, validation.MaxProposalCoverLength)
	if err := validation.Check(fields); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if valueobject.JobStatus(job.Status) != valueobject.JobStatusActive {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			"отклики принимаются только на активные объявления")
	}
	if job.BuyerID == sellerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликнуться на своё объявление")
	}

	exists, err := s.repo.ExistsForJobAndSeller(ctx, jobID, sellerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(apperror.ErrCodeConflict, "отклик на это объявление уже отправлен")
	}

	proposal := &models.Proposal{
		JobID:       jobID,
		SellerID:    sellerID,
		Amount:      in.Amount,
		CoverLetter: in.CoverLetter,
		Status:      models.ProposalStatusSubmitted,
	}
	if err := s.repo.Create(ctx, proposal, in.AttachmentIDs); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Get возвращает отклик, доступен он только его сторонам.
func (s *ProposalService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if proposal.SellerID != userID {
		job, err := s.jobs.GetByID(ctx, proposal.JobID)
		if err != nil {
			return nil, err
		}
		if job.BuyerID != userID {
			return nil, apperror.ErrForbidden
		}
	}
	return proposal, nil
}

// ListByJob возвращает отклики на объявление. Видит их только владелец.
func (s *ProposalService) ListByJob(ctx context.Context, buyerID, jobID uuid.UUID) ([]models.Proposal, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByJob(ctx, jobID)
}

// ListForBuyer возвращает отклики на все объявления покупателя.
func (s *ProposalService) ListForBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	return s.repo.ListByBuyer(ctx, buyerID, normalizeLimit(limit), offset)
}

// ListForSeller возвращает отклики самого исполнителя.
func (s *ProposalService) ListForSeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	return s.repo.ListBySeller(ctx, sellerID, normalizeLimit(limit), offset)
}

// SetBuyerDecision ставит или снимает пометку покупателя на отклике.
// Пометка консультативна: она не меняет статус отклика и не мешает
// создать заказ из любого отклика. Повторная установка того же значения
// безвредна.
func (s *ProposalService) SetBuyerDecision(ctx context.Context, buyerID, id uuid.UUID, decision *string) (*models.Proposal, error) {
	proposal, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, proposal.JobID)
	if err != nil {
		return nil, err
	}
	if job.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	if decision != nil && !valueobject.BuyerDecision(*decision).IsValid() {
		return nil, apperror.NewValidation([]apperror.FieldError{
			{Field: "decision", Message: "допустимы shortlisted, maybe, no_interest"},
		})
	}

	updated, err := s.repo.UpdateBuyerDecision(ctx, id, decision)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, err
	}

	if s.hub != nil {
		_ = s.hub.NotifyUser(updated.SellerID, ws.EventProposalDecision, map[string]any{
			"proposal_id": updated.ID,
			"decision":    updated.BuyerDecision,
		})
	}
	return updated, nil
}

func (s *ProposalService) get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

// normalizeLimit приводит размер страницы к разумным границам.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
