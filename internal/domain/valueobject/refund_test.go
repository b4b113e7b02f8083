package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefundTierFor(t *testing.T) {
	event := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, RefundTierFull, RefundTierFor(event, event.Add(-10*24*time.Hour)))
	assert.Equal(t, RefundTierFull, RefundTierFor(event, event.Add(-7*24*time.Hour)))
	assert.Equal(t, RefundTierHigh, RefundTierFor(event, event.Add(-7*24*time.Hour+time.Minute)))
	assert.Equal(t, RefundTierHigh, RefundTierFor(event, event.Add(-3*24*time.Hour)))
	assert.Equal(t, RefundTierHalf, RefundTierFor(event, event.Add(-3*24*time.Hour+time.Minute)))
	assert.Equal(t, RefundTierHalf, RefundTierFor(event, event.Add(-2*24*time.Hour)))
	assert.Equal(t, RefundTierHalf, RefundTierFor(event, event.Add(-24*time.Hour)))
	assert.Equal(t, RefundTierMinimal, RefundTierFor(event, event.Add(-23*time.Hour)))
	assert.Equal(t, RefundTierMinimal, RefundTierFor(event, event.Add(-time.Minute)))
	// Отмена после даты события тоже даёт минимальную ставку
	assert.Equal(t, RefundTierMinimal, RefundTierFor(event, event.Add(24*time.Hour)))
}

func TestRefundTier_Amount(t *testing.T) {
	assert.Equal(t, 107.00, RefundTierFull.Amount(107.00))
	assert.Equal(t, 80.25, RefundTierHigh.Amount(107.00))
	assert.Equal(t, 53.50, RefundTierHalf.Amount(107.00))
	assert.Equal(t, 26.75, RefundTierMinimal.Amount(107.00))
}

func TestEscrowTotal(t *testing.T) {
	// $100 + 5% комиссии + 2% налога = $107.00
	assert.Equal(t, 107.00, EscrowTotal(100, 5, 2))
	assert.Equal(t, 100.00, EscrowTotal(100, 0, 0))
	// Округление до двух знаков
	assert.Equal(t, 107.03, EscrowTotal(100.03, 5, 2))
}

func TestCompletionWindow(t *testing.T) {
	requested := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	w := CompletionWindow{RequestedAt: requested}

	assert.Equal(t, requested.Add(48*time.Hour), w.Deadline())

	// За минуту до дедлайна окно ещё открыто
	now := requested.Add(47*time.Hour + 59*time.Minute)
	assert.False(t, w.Expired(now))
	days, hours, minutes := w.Split(now)
	assert.Equal(t, 0, days)
	assert.Equal(t, 0, hours)
	assert.Equal(t, 1, minutes)

	// Сразу после сдачи
	days, hours, minutes = w.Split(requested)
	assert.Equal(t, 2, days)
	assert.Equal(t, 0, hours)
	assert.Equal(t, 0, minutes)

	// После дедлайна остаток прижат к нулю
	late := requested.Add(49 * time.Hour)
	assert.True(t, w.Expired(late))
	assert.Equal(t, time.Duration(0), w.Remaining(late))
}
