package get_available_slots

import (
	"fmt"
	"time"
)

func validateInput(masterID, serviceID int64, date time.Time) error {
	if masterID <= 0 {
		return fmt.Errorf("%w: masterID must be positive, got %d", ErrInvalidInput, masterID)
	}
	if serviceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive, got %d", ErrInvalidInput, serviceID)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
