package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики бизнес-событий маркетплейса. Экспортируются на /metrics.
var (
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talent_order_transitions_total",
		Help: "Переходы заказов между статусами.",
	}, []string{"from", "to"})

	PaymentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talent_payments_processed_total",
		Help: "Принятые эскроу-платежи.",
	})

	PaymentsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talent_payments_released_total",
		Help: "Выплаты исполнителям по завершённым заказам.",
	})

	PaymentsRefunded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talent_payments_refunded_total",
		Help: "Возвраты покупателям по отменённым заказам.",
	}, []string{"percent"})

	DisputesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talent_disputes_opened_total",
		Help: "Открытые споры.",
	})

	ReconciliationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talent_payment_reconciliation_total",
		Help: "Сверки платежа с заказом по результату.",
	}, []string{"result"})
)
