package webhook

import "context"

// ConversationService интерфейс диалогового сервиса
type ConversationService interface {
	HandleMessage(ctx context.Context, chatID, text string) error
}

// MessageSender интерфейс отправки сообщений клиентам
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
