package generate_calendar

import "errors"

var (
	// ErrInvalidConfig возвращается при некорректных параметрах генерации
	ErrInvalidConfig = errors.New("generate_calendar: invalid configuration")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_calendar: internal error")
)
