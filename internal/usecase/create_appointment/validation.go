package create_appointment

import (
	"fmt"
	"time"
)

func validateInput(input Input) error {
	if input.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive, got %d", ErrInvalidInput, input.ClientID)
	}
	if input.MasterID <= 0 {
		return fmt.Errorf("%w: masterID must be positive, got %d", ErrInvalidInput, input.MasterID)
	}
	if input.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive, got %d", ErrInvalidInput, input.ServiceID)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := input.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start time %q: %v", ErrInvalidInput, input.StartTime, err)
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
