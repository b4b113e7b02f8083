package valueobject

import "time"

// RefundTier — процент возврата при отмене заказа, зависящий от того,
// насколько заранее до запланированной даты события произошла отмена.
type RefundTier int

const (
	RefundTierFull    RefundTier = 100
	RefundTierHigh    RefundTier = 75
	RefundTierHalf    RefundTier = 50
	RefundTierMinimal RefundTier = 25
)

// RefundTierFor возвращает ставку возврата для отмены в момент cancelledAt
// заказа с датой события eventDate:
//   - за 7 и более дней до события — 100%
//   - за 3–6 дней — 75%
//   - за 1–2 дня — 50%
//   - менее чем за сутки (включая отмену после даты события) — 25%
func RefundTierFor(eventDate, cancelledAt time.Time) RefundTier {
	until := eventDate.Sub(cancelledAt)
	switch {
	case until >= 7*24*time.Hour:
		return RefundTierFull
	case until >= 3*24*time.Hour:
		return RefundTierHigh
	case until >= 24*time.Hour:
		return RefundTierHalf
	default:
		return RefundTierMinimal
	}
}

// Amount считает возвращаемую сумму от итоговой суммы платежа.
func (t RefundTier) Amount(total float64) float64 {
	return Round2(total * float64(t) / 100)
}
