package schedule

import "errors"

var (
	// ErrSlotNotFound возвращается, когда запись календаря не найдена
	// Для вызывающего это означает "мастер не работает в эту дату"
	ErrSlotNotFound = errors.New("schedule.repository: calendar slot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
