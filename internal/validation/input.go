package validation

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
)

// Константы валидации
const (
	MinJobTitleLength       = 3
	MaxJobTitleLength       = 200
	MaxJobDescriptionLength = 5000
	MinProposalCoverLength  = 10
	MaxProposalCoverLength  = 2000
	MaxReviewTextLength     = 250
	MinDisputeSubjectLength = 3
	MaxDisputeSubjectLength = 200
	MaxDisputeDescLength    = 5000
	MinAmount               = 0.0
	MaxAmount               = 100000000.0 // 100 миллионов
	MaxRadiusKM             = 1000
)

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.NewValidation([]apperror.FieldError{
			{Field: "email", Message: "email обязателен"},
		})
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 64 ||
		len(parts[1]) == 0 || len(parts[1]) > 255 || !strings.Contains(parts[1], ".") {
		return apperror.NewValidation([]apperror.FieldError{
			{Field: "email", Message: "некорректный формат email"},
		})
	}
	return nil
}

// FieldLength добавляет ошибку поля, если длина строки вне границ.
// Возвращает дополненный список, чтобы проверки собирались в цепочку
// и клиент получал все ошибки валидации за один запрос.
func FieldLength(fields []apperror.FieldError, name, value string, min, max int) []apperror.FieldError {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if min > 0 && length < min {
		return append(fields, apperror.FieldError{
			Field: name, Message: "не короче " + strconv.Itoa(min) + " символов",
		})
	}
	if max > 0 && length > max {
		return append(fields, apperror.FieldError{
			Field: name, Message: "не длиннее " + strconv.Itoa(max) + " символов",
		})
	}
	return fields
}

// FieldRequired добавляет ошибку, если строка пуста.
func FieldRequired(fields []apperror.FieldError, name, value string) []apperror.FieldError {
	if strings.TrimSpace(value) == "" {
		return append(fields, apperror.FieldError{Field: name, Message: "обязательное поле"})
	}
	return fields
}

// FieldAmount добавляет ошибку, если сумма вне допустимого диапазона.
func FieldAmount(fields []apperror.FieldError, name string, value float64) []apperror.FieldError {
	if value <= MinAmount {
		return append(fields, apperror.FieldError{Field: name, Message: "сумма должна быть положительной"})
	}
	if value > MaxAmount {
		return append(fields, apperror.FieldError{Field: name, Message: "сумма слишком велика"})
	}
	return fields
}

// FieldFutureDate добавляет ошибку, если дата не в будущем.
func FieldFutureDate(fields []apperror.FieldError, name string, value time.Time, now time.Time) []apperror.FieldError {
	if value.IsZero() {
		return append(fields, apperror.FieldError{Field: name, Message: "обязательное поле"})
	}
	if !value.After(now) {
		return append(fields, apperror.FieldError{Field: name, Message: "дата должна быть в будущем"})
	}
	return fields
}

// FieldRating добавляет ошибку, если оценка вне шкалы 1..5.
func FieldRating(fields []apperror.FieldError, name string, value int) []apperror.FieldError {
	if value < 1 || value > 5 {
		return append(fields, apperror.FieldError{Field: name, Message: "оценка от 1 до 5"})
	}
	return fields
}

// Check превращает накопленный список ошибок в одну агрегированную.
func Check(fields []apperror.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return apperror.NewValidation(fields)
}
