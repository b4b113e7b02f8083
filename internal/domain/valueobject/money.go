package valueobject

import (
	"math"

	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
)

// Round2 округляет денежную сумму до двух знаков.
// Все суммы в API двузначные десятичные.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// EscrowTotal считает итоговую сумму платежа:
// amount + комиссия площадки + налог, оба заданы в процентах от amount.
func EscrowTotal(amount, platformCharges, tax float64) float64 {
	return Round2(amount + amount*platformCharges/100 + amount*tax/100)
}

// ValidateAmount проверяет базовую корректность денежной суммы.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	return nil
}

// ValidatePercent проверяет процентную ставку (комиссия, налог).
func ValidatePercent(percent float64) error {
	if percent < 0 || percent > 100 {
		return apperror.New(apperror.ErrCodeValidation, "процент должен быть в диапазоне от 0 до 100")
	}
	return nil
}
