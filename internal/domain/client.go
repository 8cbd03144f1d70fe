package domain

import "time"

// ConversationState состояние диалога клиента с ботом
// Закрытый enum: диспетчер обязан обрабатывать каждое состояние явно
type ConversationState string

const (
	StateExpectingName           ConversationState = "expecting_name"
	StateActive                  ConversationState = "active"
	StateChoosingServiceCategory ConversationState = "choosing_service_category"
	StateChoosingSubService      ConversationState = "choosing_sub_service"
	StateChoosingMaster          ConversationState = "choosing_master"
	StateChoosingDate            ConversationState = "choosing_date"
	StateChoosingTime            ConversationState = "choosing_time"
	StateAwaitingConfirmation    ConversationState = "awaiting_confirmation"
	StateCheckingAppointments    ConversationState = "checking_appointments"
	StateWaitingForCancellation  ConversationState = "waiting_for_cancellation"
)

// Client represents a chat client identified by phone number
type Client struct {
	ID    int64
	Phone string // уникальный идентификатор чата, минимум 5 символов
	Name  string
	State ConversationState

	// Транзиентные поля выбора в процессе записи.
	// Обнуляются при каждом возврате в главное меню
	SelectedCategoryID *int64
	SelectedServiceID  *int64
	SelectedMasterID   *int64
	SelectedDate       *time.Time
	WeekOffset         int // смещение окна дат при пагинации (кнопки 8/9)
}

// ResetSelection clears all transient booking selections.
// Must be applied on every return to the main menu, otherwise a stale
// selection from an abandoned flow leaks into the next one.
func (c *Client) ResetSelection() {
	c.SelectedCategoryID = nil
	c.SelectedServiceID = nil
	c.SelectedMasterID = nil
	c.SelectedDate = nil
	c.WeekOffset = 0
}

// HasFullSelection проверяет, что выбраны услуга, мастер и дата
func (c *Client) HasFullSelection() bool {
	return c.SelectedServiceID != nil && c.SelectedMasterID != nil && c.SelectedDate != nil
}
