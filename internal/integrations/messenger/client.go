package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SalonService/pkg/metrics"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для отправки сообщений через WhatsApp-шлюз (green-api).
// Формат запроса: POST {apiURL}/waInstance{instanceID}/SendMessage/{apiToken}
type Client struct {
	apiURL     string
	instanceID string
	apiToken   string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        Logger
}

// NewClient создает новый экземпляр клиента мессенджера
func NewClient(apiURL, instanceID, apiToken string, timeout time.Duration, m *metrics.Metrics, log Logger) *Client {
	return &Client{
		apiURL:     apiURL,
		instanceID: instanceID,
		apiToken:   apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
		log:     log,
	}
}

// SendMessage отправляет текстовое сообщение в чат клиента
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" || text == "" {
		return ErrInvalidInput
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Message: text})
	if err != nil {
		return fmt.Errorf("%w: SendMessage - failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/waInstance%s/SendMessage/%s", c.apiURL, c.instanceID, c.apiToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: SendMessage - failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countSend("error")
		return fmt.Errorf("%w: SendMessage - failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.countSend("error")
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: SendMessage - unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var parsed sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.countSend("error")
		return fmt.Errorf("%w: SendMessage - failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.countSend("ok")
	c.log.Info("SendMessage: message %s delivered to chat %s", parsed.IDMessage, chatID)
	return nil
}

func (c *Client) countSend(result string) {
	if c.metrics != nil {
		c.metrics.MessagesSentTotal.WithLabelValues(result).Inc()
	}
}
