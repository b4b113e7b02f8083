package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/metrics"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
	"github.com/ignatzorin/talent-backend/internal/ws"
)

// PaymentRepository описывает зависимости PaymentService от слоя хранилища.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	Release(ctx context.Context, orderID uuid.UUID, now time.Time) (*models.Payment, error)
}

// OrderRepoForPayment — доступ к заказам из платёжного сервиса.
type OrderRepoForPayment interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// PaymentService ведёт платёжный реестр: приём в эскроу, проверку
// существования и сверку с заказом.
type PaymentService struct {
	repo   PaymentRepository
	orders OrderRepoForPayment
	hub    WSNotifier
	now    func() time.Time
}

func NewPaymentService(repo PaymentRepository, orders OrderRepoForPayment) *PaymentService {
	return &PaymentService{repo: repo, orders: orders, now: time.Now}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *PaymentService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// ProcessInput содержит данные приёма платежа.
type ProcessInput struct {
	OrderID         uuid.UUID
	PaymentMethod   string
	Amount          float64
	PlatformCharges float64
	Tax             float64
	TotalAmount     float64
}

// Process принимает платёж в эскроу. Платёж на заказ ровно один,
// итоговая сумма сверяется с формулой на сервере.
func (s *PaymentService) Process(ctx context.Context, buyerID uuid.UUID, in ProcessInput) (*models.Payment, error) {
	var fields []apperror.FieldError
	fields = validation.FieldAmount(fields, "amount", in.Amount)
	fields = validation.FieldRequired(fields, "payment_method", in.PaymentMethod)
	if in.PlatformCharges < 0 || in.PlatformCharges > 100 {
		fields = append(fields, apperror.FieldError{
			Field: "platform_charges", Message: "процент вне диапазона 0..100",
		})
	}
	if in.Tax < 0 || in.Tax > 100 {
		fields = append(fields, apperror.FieldError{Field: "tax", Message: "процент вне диапазона 0..100"})
	}
	if err := validation.Check(fields); err != nil {
		return nil, err
	}

	order, err := s.order(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	if valueobject.OrderStatus(order.Status).IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			"заказ в статусе "+order.Status+" не принимает оплату")
	}

	// Клиентская сумма не источник правды: пересчитываем и сверяем
	expected := valueobject.EscrowTotal(in.Amount, in.PlatformCharges, in.Tax)
	if expected != valueobject.Round2(in.TotalAmount) {
		return nil, apperror.NewValidation([]apperror.FieldError{
			{Field: "total_amount", Message: "итоговая сумма не совпадает с расчётной"},
		})
	}

	payment := &models.Payment{
		OrderID:         in.OrderID,
		BuyerID:         buyerID,
		Amount:          in.Amount,
		PlatformCharges: in.PlatformCharges,
		Tax:             in.Tax,
		TotalAmount:     expected,
		PaymentMethod:   in.PaymentMethod,
		TransactionID:   "txn_" + uuid.NewString(),
		Status:          string(valueobject.PaymentStatusEscrow),
		PaymentDate:     s.now(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			return nil, apperror.ErrDuplicatePayment
		}
		return nil, err
	}

	metrics.PaymentsProcessed.Inc()
	if s.hub != nil {
		_ = s.hub.NotifyUser(payment.BuyerID, ws.EventPaymentUpdated, map[string]any{
			"order_id": payment.OrderID,
			"status":   payment.Status,
		})
	}
	return payment, nil
}

// Exists сообщает, принят ли платёж по заказу. Только факт существования,
// без деталей реестра.
func (s *PaymentService) Exists(ctx context.Context, userID, orderID uuid.UUID) (bool, error) {
	if _, err := s.ownedOrder(ctx, userID, orderID); err != nil {
		return false, err
	}
	return s.repo.ExistsForOrder(ctx, orderID)
}

// GetByOrder возвращает запись реестра и по пути выполняет сверку:
// завершённый заказ с платежом в эскроу означает пропущенную выплату,
// чтение её навёрстывает.
func (s *PaymentService) GetByOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Payment, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	if valueobject.OrderStatus(order.Status) == valueobject.OrderStatusComplete &&
		valueobject.PaymentStatus(payment.Status) == valueobject.PaymentStatusEscrow {
		released, err := s.repo.Release(ctx, orderID, s.now())
		if err != nil {
			metrics.ReconciliationRuns.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.ReconciliationRuns.WithLabelValues("released").Inc()
		return released, nil
	}

	metrics.ReconciliationRuns.WithLabelValues("noop").Inc()
	return payment, nil
}

func (s *PaymentService) order(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}
