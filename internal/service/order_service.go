package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/goroutine"
	"github.com/ignatzorin/talent-backend/internal/logger"
	"github.com/ignatzorin/talent-backend/internal/metrics"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
	"github.com/ignatzorin/talent-backend/internal/ws"
)

// OrderRepository описывает зависимости OrderService от слоя хранилища.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error)
	HasActiveOrderForJob(ctx context.Context, jobID uuid.UUID) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error)
	Approve(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error)
}

// ProposalRepoForOrder — доступ к откликам из сервиса заказов.
type ProposalRepoForOrder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// JobRepoForOrder — доступ к объявлениям из сервиса заказов.
type JobRepoForOrder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// PaymentRepoForOrder — доступ к платёжному реестру из сервиса заказов.
type PaymentRepoForOrder interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	Release(ctx context.Context, orderID uuid.UUID, now time.Time) (*models.Payment, error)
	Refund(ctx context.Context, orderID uuid.UUID, percent int, amount float64, reason string, now time.Time) (*models.Payment, error)
}

// OrderService ведёт заказ по жизненному циклу
// pending → delivered → complete с возвратом в pending при отклонении
// и терминальной отменой.
type OrderService struct {
	repo      OrderRepository
	proposals ProposalRepoForOrder
	jobs      JobRepoForOrder
	payments  PaymentRepoForOrder
	hub       WSNotifier
	now       func() time.Time
}

func NewOrderService(repo OrderRepository, proposals ProposalRepoForOrder, jobs JobRepoForOrder, payments PaymentRepoForOrder) *OrderService {
	return &OrderService{
		repo:      repo,
		proposals: proposals,
		jobs:      jobs,
		payments:  payments,
		now:       time.Now,
	}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *OrderService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// OrderView — заказ вместе с вычисляемыми полями: окно подтверждения
// и действия, доступные из текущего статуса.
type OrderView struct {
	*models.Order
	CompletionWindow *models.CompletionWindowInfo `json:"completion_window,omitempty"`
	AllowedActions   []valueobject.OrderAction    `json:"allowed_actions"`
}

// CreateFromProposal создаёт заказ: покупатель акцептует отклик.
// Расписание объявления снимается снимком, у объявления может быть
// только один активный заказ.
func (s *OrderService) CreateFromProposal(ctx context.Context, buyerID, proposalID uuid.UUID) (*OrderView, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, proposal.JobID)
	if err != nil {
		return nil, err
	}
	if job.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	if proposal.Status == models.ProposalStatusWithdrawn {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отклик отозван исполнителем")
	}

	busy, err := s.repo.HasActiveOrderForJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, apperror.New(apperror.ErrCodeConflict,
			"по этому объявлению уже есть активный заказ")
	}

	order := &models.Order{
		JobID:      job.ID,
		ProposalID: proposal.ID,
		BuyerID:    buyerID,
		SellerID:   proposal.SellerID,
		Status:     string(valueobject.OrderStatusPending),
		Amount:     proposal.Amount,

		// Снимок расписания: дальнейшие правки объявления заказ не трогают
		EventDate:       job.EventDate,
		LocationName:    job.LocationName,
		LocationAddress: job.LocationAddress,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.proposals.UpdateStatus(ctx, proposal.ID, models.ProposalStatusAccepted); err != nil {
		logger.Log.WithField("proposal_id", proposal.ID).WithError(err).
			Warn("order service: не удалось отметить отклик принятым")
	}

	metrics.OrderTransitions.WithLabelValues("", string(valueobject.OrderStatusPending)).Inc()
	s.notifyStatus(order)
	return s.view(order), nil
}

// GetForUser возвращает заказ одной из его сторон.
func (s *OrderService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*OrderView, error) {
	order, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(order), nil
}

// ListForBuyer возвращает заказы покупателя.
func (s *OrderService) ListForBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]OrderView, error) {
	orders, err := s.repo.ListByBuyer(ctx, buyerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.views(orders), nil
}

// ListForSeller возвращает заказы исполнителя.
func (s *OrderService) ListForSeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]OrderView, error) {
	orders, err := s.repo.ListBySeller(ctx, sellerID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.views(orders), nil
}

// Deliver — исполнитель сдаёт работу: pending → delivered, открывается
// 48-часовое окно подтверждения.
func (s *OrderService) Deliver(ctx context.Context, sellerID, id uuid.UUID) (*OrderView, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, apperror.ErrForbidden
	}

	current := valueobject.OrderStatus(order.Status)
	if !current.CanTransitionTo(valueobject.OrderStatusDelivered) {
		return nil, s.transitionError(current, valueobject.OrderStatusDelivered)
	}

	updated, err := s.repo.MarkDelivered(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Статус успел измениться между чтением и записью
			return nil, s.transitionError(current, valueobject.OrderStatusDelivered)
		}
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(current), string(valueobject.OrderStatusDelivered)).Inc()
	s.notifyStatus(updated)
	return s.view(updated), nil
}

// CompleteInput — решение покупателя по сданной работе.
type CompleteInput struct {
	Status          string
	RejectionReason string
}

// Complete — покупатель подтверждает или отклоняет сдачу.
// Подтверждение завершает заказ и выплачивает эскроу; отклонение
// возвращает заказ в pending с сохранением причины, повторная сдача
// открывает окно заново.
func (s *OrderService) Complete(ctx context.Context, buyerID, id uuid.UUID, in CompleteInput) (*OrderView, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	current := valueobject.OrderStatus(order.Status)

	switch in.Status {
	case "completed":
		if !current.CanTransitionTo(valueobject.OrderStatusComplete) {
			return nil, s.transitionError(current, valueobject.OrderStatusComplete)
		}
		updated, err := s.repo.Approve(ctx, id, s.now())
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, s.transitionError(current, valueobject.OrderStatusComplete)
			}
			return nil, err
		}

		metrics.OrderTransitions.WithLabelValues(string(current), string(valueobject.OrderStatusComplete)).Inc()

		// Выплата идёт вторым шагом после записи заказа. Если процесс
		// упадёт между шагами, сверка на чтении реестра закроет дыру.
		goroutine.SafeGoWithContext(context.WithoutCancel(ctx), func(bg context.Context) {
			s.releaseEscrow(bg, updated.ID)
		})

		s.notifyStatus(updated)
		return s.view(updated), nil

	case "rejected":
		var fields []apperror.FieldError
		fields = validation.FieldRequired(fields, "rejection_reason", in.RejectionReason)
		if err := validation.Check(fields); err != nil {
			return nil, err
		}
		if !current.CanTransitionTo(valueobject.OrderStatusPending) {
			return nil, s.transitionError(current, valueobject.OrderStatusPending)
		}
		updated, err := s.repo.Reject(ctx, id, in.RejectionReason, s.now())
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, s.transitionError(current, valueobject.OrderStatusPending)
			}
			return nil, err
		}

		metrics.OrderTransitions.WithLabelValues(string(current), string(valueobject.OrderStatusPending)).Inc()
		s.notifyStatus(updated)
		return s.view(updated), nil

	default:
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			"решение по сдаче должно быть completed или rejected")
	}
}

// Cancel — покупатель отменяет заказ. Отмена терминальна, ставка возврата
// считается от даты события из снимка расписания.
func (s *OrderService) Cancel(ctx context.Context, buyerID, id uuid.UUID, reason string) (*OrderView, error) {
	var fields []apperror.FieldError
	fields = validation.FieldRequired(fields, "cancellation_reason", reason)
	if err := validation.Check(fields); err != nil {
		return nil, err
	}

	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}

	current := valueobject.OrderStatus(order.Status)
	if !current.CanTransitionTo(valueobject.OrderStatusCancelled) {
		return nil, s.transitionError(current, valueobject.OrderStatusCancelled)
	}

	now := s.now()
	updated, err := s.repo.Cancel(ctx, id, reason, now)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, s.transitionError(current, valueobject.OrderStatusCancelled)
		}
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(current), string(valueobject.OrderStatusCancelled)).Inc()

	s.refundEscrow(ctx, updated, reason, now)
	s.notifyStatus(updated)
	return s.view(updated), nil
}

// releaseEscrow выплачивает эскроу по завершённому заказу. Отсутствие
// платежа не ошибка: заказ мог быть завершён до оплаты.
func (s *OrderService) releaseEscrow(ctx context.Context, orderID uuid.UUID) {
	payment, err := s.payments.Release(ctx, orderID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return
		}
		logger.Log.WithField("order_id", orderID).WithError(err).
			Error("order service: не удалось выплатить эскроу")
		return
	}
	metrics.PaymentsReleased.Inc()
	s.notifyPayment(payment)
}

// refundEscrow возвращает эскроу покупателю по ставке отмены.
func (s *OrderService) refundEscrow(ctx context.Context, order *models.Order, reason string, now time.Time) {
	payment, err := s.payments.GetByOrderID(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrPaymentNotFound) {
			logger.Log.WithField("order_id", order.ID).WithError(err).
				Error("order service: не удалось прочитать платёж при отмене")
		}
		return
	}

	// Без даты события отмена считается заблаговременной
	tier := valueobject.RefundTierFull
	if order.EventDate != nil {
		tier = valueobject.RefundTierFor(*order.EventDate, now)
	}
	refunded, err := s.payments.Refund(ctx, order.ID, int(tier), tier.Amount(payment.TotalAmount), reason, now)
	if err != nil {
		logger.Log.WithField("order_id", order.ID).WithError(err).
			Error("order service: не удалось вернуть эскроу")
		return
	}
	metrics.PaymentsRefunded.WithLabelValues(strconv.Itoa(int(tier))).Inc()
	s.notifyPayment(refunded)
}

func (s *OrderService) get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// view собирает представление заказа с окном подтверждения.
// Окно существует только у delivered-заказов и считается на чтении,
// его истечение само по себе ничего не меняет.
func (s *OrderService) view(order *models.Order) *OrderView {
	v := &OrderView{
		Order:          order,
		AllowedActions: valueobject.OrderStatus(order.Status).AllowedActions(),
	}
	if valueobject.OrderStatus(order.Status) == valueobject.OrderStatusDelivered &&
		order.CompletionRequestedAt != nil {
		window := valueobject.CompletionWindow{RequestedAt: *order.CompletionRequestedAt}
		now := s.now()
		days, hours, minutes := window.Split(now)
		v.CompletionWindow = &models.CompletionWindowInfo{
			Deadline: window.Deadline(),
			Days:     days,
			Hours:    hours,
			Minutes:  minutes,
			Expired:  window.Expired(now),
		}
	}
	return v
}

func (s *OrderService) views(orders []models.Order) []OrderView {
	result := make([]OrderView, 0, len(orders))
	for i := range orders {
		result = append(result, *s.view(&orders[i]))
	}
	return result
}

func (s *OrderService) transitionError(from, to valueobject.OrderStatus) error {
	return apperror.New(apperror.ErrCodeInvalidTransition,
		"переход заказа "+string(from)+" → "+string(to)+" недопустим")
}

// notifyStatus пушит событие обеим сторонам заказа.
func (s *OrderService) notifyStatus(order *models.Order) {
	if s.hub == nil {
		return
	}
	data := map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	}
	_ = s.hub.NotifyUser(order.BuyerID, ws.EventOrderStatus, data)
	_ = s.hub.NotifyUser(order.SellerID, ws.EventOrderStatus, data)
}

func (s *OrderService) notifyPayment(payment *models.Payment) {
	if s.hub == nil {
		return
	}
	_ = s.hub.NotifyUser(payment.BuyerID, ws.EventPaymentUpdated, map[string]any{
		"order_id": payment.OrderID,
		"status":   payment.Status,
	})
}
