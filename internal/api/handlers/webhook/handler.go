package webhook

import (
	"net/http"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
)

const (
	typeIncomingMessage = "incomingMessageReceived"
	typeTextMessage     = "textMessage"
)

type Handler struct {
	conversation ConversationService
	sender       MessageSender
	logger       Logger
}

func NewHandler(conversation ConversationService, sender MessageSender, logger Logger) *Handler {
	return &Handler{
		conversation: conversation,
		sender:       sender,
		logger:       logger,
	}
}

// Handle POST /webhook/
// Принимает уведомления шлюза и передает текстовые сообщения диалоговому
// сервису. Нетекстовые сообщения отклоняются с пояснением клиенту
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req IncomingWebhook
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /webhook/ - invalid request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	if req.TypeWebhook != typeIncomingMessage {
		handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: "ignored"})
		return
	}

	chatID := req.SenderData.ChatID

	if req.MessageData.TypeMessage != typeTextMessage {
		h.logger.Info("POST /webhook/ - unsupported message type %q from %s", req.MessageData.TypeMessage, chatID)
		if err := h.sender.SendMessage(r.Context(), chatID, "Я обрабатываю только текстовые сообщения. 😊"); err != nil {
			h.logger.Error("POST /webhook/ - failed to reply to %s: %v", chatID, err)
		}
		handlers.RespondError(w, http.StatusBadRequest, "unsupported_type")
		return
	}

	text := req.MessageData.TextMessageData.TextMessage
	if text == "" {
		h.logger.Warn("POST /webhook/ - empty text message from %s", chatID)
		if err := h.sender.SendMessage(r.Context(), chatID, "Пожалуйста, введите текстовую команду."); err != nil {
			h.logger.Error("POST /webhook/ - failed to reply to %s: %v", chatID, err)
		}
		handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: "received"})
		return
	}

	if err := h.conversation.HandleMessage(r.Context(), chatID, text); err != nil {
		h.logger.Error("POST /webhook/ - failed to handle message from %s: %v", chatID, err)
		handlers.RespondInternalError(w, "внутренняя ошибка")
		return
	}

	handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: "received"})
}
