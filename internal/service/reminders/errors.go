package reminders

import "errors"

var (
	// ErrNoPendingAppointment у клиента нет записи, ожидающей подтверждения
	ErrNoPendingAppointment = errors.New("service.reminders: no pending appointment for client")

	// ErrRetryExhausted конфликт версий не разрешился за отведенное число попыток
	ErrRetryExhausted = errors.New("service.reminders: optimistic lock retries exhausted")

	// ErrInternal внутренняя ошибка сервиса напоминаний
	ErrInternal = errors.New("service.reminders: internal error")
)
