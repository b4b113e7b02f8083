package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/metrics"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
	"github.com/ignatzorin/talent-backend/internal/ws"
)

// DisputeRepository описывает зависимости DisputeService от слоя хранилища.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute, attachmentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error)
}

// OrderRepoForDispute — доступ к заказам из сервиса споров.
type OrderRepoForDispute interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// DisputeService регистрирует споры по заказам. Спор никогда не меняет
// статус заказа или платежа, его ведёт внешний процесс поддержки.
type DisputeService struct {
	repo   DisputeRepository
	orders OrderRepoForDispute
	hub    WSNotifier
	now    func() time.Time
}

func NewDisputeService(repo DisputeRepository, orders OrderRepoForDispute) *DisputeService {
	return &DisputeService{repo: repo, orders: orders, now: time.Now}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *DisputeService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// DisputeInput содержит данные нового спора.
type DisputeInput struct {
	Subject       string
	Description   string
	AttachmentIDs []uuid.UUID
}

// Create открывает спор по заказу. Предусловий по статусу заказа нет,
// количество споров не ограничено: каждый вызов — новая запись.
func (s *DisputeService) Create(ctx context.Context, buyerID, orderID uuid.UUID, in DisputeInput) (*models.Dispute, error) {
	var fields []apperror.FieldError
	fields = validation.FieldLength(fields, "subject", in.Subject,
		validation.MinDisputeSubjectLength, validation.MaxDisputeSubjectLength)
	fields = validation.FieldRequired(fields, "description", in.Description)
	fields = validation.FieldLength(fields, "description", in.Description,
		0, validation.MaxDisputeDescLength)
	if err := validation.Check(fields); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	dispute := &models.Dispute{
		OrderID:     orderID,
		OrderNo:     order.OrderNo,
		InitiatorID: buyerID,
		Subject:     in.Subject,
		Description: in.Description,
		Status:      models.DisputeStatusOpen,
	}
	if err := s.repo.Create(ctx, dispute, in.AttachmentIDs); err != nil {
		return nil, err
	}

	metrics.DisputesOpened.Inc()
	if s.hub != nil {
		_ = s.hub.NotifyUser(order.SellerID, ws.EventDisputeUpdated, map[string]any{
			"dispute_id": dispute.ID,
			"order_id":   orderID,
			"status":     dispute.Status,
		})
	}
	return dispute, nil
}

// ListByOrder возвращает все споры по заказу любой из его сторон.
func (s *DisputeService) ListByOrder(ctx context.Context, userID, orderID uuid.UUID) ([]models.Dispute, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// UpdateStatus двигает спор по цепочке open → in_progress → resolved.
// Эндпоинт для внешнего процесса поддержки; resolution обязателен
// при разрешении.
func (s *DisputeService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution string) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	allowed := map[string]string{
		models.DisputeStatusOpen:       models.DisputeStatusInProgress,
		models.DisputeStatusInProgress: models.DisputeStatusResolved,
	}
	if next, ok := allowed[dispute.Status]; !ok || next != status {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			"переход спора "+dispute.Status+" → "+status+" недопустим")
	}

	var resolutionPtr *string
	var resolvedAt *time.Time
	if status == models.DisputeStatusResolved {
		var fields []apperror.FieldError
		fields = validation.FieldRequired(fields, "resolution", resolution)
		if err := validation.Check(fields); err != nil {
			return nil, err
		}
		resolutionPtr = &resolution
		now := s.now()
		resolvedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, resolutionPtr, resolvedAt)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		_ = s.hub.NotifyUser(updated.InitiatorID, ws.EventDisputeUpdated, map[string]any{
			"dispute_id": updated.ID,
			"order_id":   updated.OrderID,
			"status":     updated.Status,
		})
	}
	return updated, nil
}
