package valueobject

import "github.com/ignatzorin/talent-backend/internal/pkg/apperror"

// JobStatus — статус объявления.
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusPaused, JobStatusClosed:
		return true
	}
	return false
}

// jobTransitions — единственный источник правды о допустимых переходах
// статусов объявления: draft публикуется, active и paused переключаются
// между собой и закрываются, closed терминален.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusDraft:  {JobStatusActive},
	JobStatusActive: {JobStatusPaused, JobStatusClosed},
	JobStatusPaused: {JobStatusActive, JobStatusClosed},
	JobStatusClosed: {},
}

func (s JobStatus) CanTransitionTo(newStatus JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// IsDeletable сообщает, можно ли физически удалить объявление.
// Active и paused объявления не удаляются, только закрываются.
func (s JobStatus) IsDeletable() bool {
	return s == JobStatusDraft || s == JobStatusClosed
}

func NewJobStatus(status string) (JobStatus, error) {
	s := JobStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус объявления")
	}
	return s, nil
}

// OrderStatus — статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusComplete  OrderStatus = "complete"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusComplete,
		OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}

// orderTransitions описывает граф жизненного цикла заказа.
// Отклонение сдачи (rejected) не является состоянием покоя:
// заказ сразу возвращается в pending, чтобы исполнитель сдал работу заново.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {OrderStatusComplete, OrderStatusPending, OrderStatusCancelled},
	OrderStatusComplete:  {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, достиг ли заказ конечного состояния.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusComplete || s == OrderStatusCancelled
}

// OrderAction — действие над заказом, доступное одной из сторон.
type OrderAction string

const (
	OrderActionDeliver OrderAction = "deliver"
	OrderActionApprove OrderAction = "approve"
	OrderActionReject  OrderAction = "reject"
	OrderActionCancel  OrderAction = "cancel"
)

// AllowedActions возвращает действия, допустимые из текущего статуса.
// Таблица разделяется валидацией переходов и UI, который решает,
// какие кнопки показать.
func (s OrderStatus) AllowedActions() []OrderAction {
	switch s {
	case OrderStatusPending:
		return []OrderAction{OrderActionDeliver, OrderActionCancel}
	case OrderStatusDelivered:
		return []OrderAction{OrderActionApprove, OrderActionReject, OrderActionCancel}
	default:
		return nil
	}
}

func NewOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заказа")
	}
	return s, nil
}

// PaymentStatus — статус записи в платёжном реестре.
type PaymentStatus string

const (
	PaymentStatusEscrow   PaymentStatus = "escrow"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusEscrow, PaymentStatusReleased, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsTerminal: released и refunded — конечные статусы, из escrow есть ровно
// два выхода.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusReleased || s == PaymentStatusRefunded
}

// BuyerDecision — необязывающая пометка покупателя на предложении.
type BuyerDecision string

const (
	BuyerDecisionShortlisted BuyerDecision = "shortlisted"
	BuyerDecisionMaybe       BuyerDecision = "maybe"
	BuyerDecisionNoInterest  BuyerDecision = "no_interest"
)

func (d BuyerDecision) IsValid() bool {
	switch d {
	case BuyerDecisionShortlisted, BuyerDecisionMaybe, BuyerDecisionNoInterest:
		return true
	}
	return false
}
