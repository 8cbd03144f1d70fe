package messenger

import "errors"

var (
	// ErrInvalidInput пустой получатель или текст сообщения
	ErrInvalidInput = errors.New("integrations.messenger: chat id and text are required")

	// ErrInvalidResponse API мессенджера вернул неожиданный ответ
	ErrInvalidResponse = errors.New("integrations.messenger: invalid response from messenger API")

	// ErrInternal внутренняя ошибка клиента мессенджера
	ErrInternal = errors.New("integrations.messenger: internal error")
)
