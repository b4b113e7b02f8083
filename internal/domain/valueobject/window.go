package valueobject

import "time"

// CompletionWindowDuration — срок, отведённый покупателю на подтверждение
// или отклонение сданной работы.
const CompletionWindowDuration = 48 * time.Hour

// CompletionWindow описывает окно подтверждения сданного заказа.
// Считается на лету из отметки времени сдачи и никогда не хранится:
// истечение окна информационное и само по себе не меняет статус заказа.
type CompletionWindow struct {
	RequestedAt time.Time
}

// Deadline — момент истечения окна.
func (w CompletionWindow) Deadline() time.Time {
	return w.RequestedAt.Add(CompletionWindowDuration)
}

// Remaining возвращает оставшееся время, не уходя в минус.
func (w CompletionWindow) Remaining(now time.Time) time.Duration {
	left := w.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired сообщает, истекло ли окно.
func (w CompletionWindow) Expired(now time.Time) bool {
	return !now.Before(w.Deadline())
}

// Split раскладывает остаток на дни, часы и минуты для отображения.
func (w CompletionWindow) Split(now time.Time) (days, hours, minutes int) {
	left := w.Remaining(now)
	days = int(left / (24 * time.Hour))
	left -= time.Duration(days) * 24 * time.Hour
	hours = int(left / time.Hour)
	left -= time.Duration(hours) * time.Hour
	minutes = int(left / time.Minute)
	return days, hours, minutes
}
