package messenger

// sendMessageRequest тело запроса SendMessage
type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// sendMessageResponse тело ответа SendMessage
type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}
