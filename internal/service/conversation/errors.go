package conversation

import "errors"

var (
	// ErrInvalidChatID некорректный идентификатор чата
	ErrInvalidChatID = errors.New("service.conversation: invalid chat id")

	// ErrInternal внутренняя ошибка диалогового сервиса
	ErrInternal = errors.New("service.conversation: internal error")
)
