package webhook

// IncomingWebhook входящее уведомление от WhatsApp-шлюза (green-api)
type IncomingWebhook struct {
	TypeWebhook string      `json:"typeWebhook"`
	SenderData  SenderData  `json:"senderData"`
	MessageData MessageData `json:"messageData"`
}

// SenderData данные отправителя
type SenderData struct {
	ChatID string `json:"chatId"`
}

// MessageData содержимое сообщения
type MessageData struct {
	TypeMessage     string          `json:"typeMessage"`
	TextMessageData TextMessageData `json:"textMessageData"`
}

// TextMessageData текст входящего сообщения
type TextMessageData struct {
	TextMessage string `json:"textMessage"`
}

// StatusResponse тело ответа вебхука
type StatusResponse struct {
	Status string `json:"status"`
}
