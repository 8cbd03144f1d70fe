package reminders

import "encoding/json"

// Типы отложенных задач
const (
	TaskTypeReminder24h         = "reminder:24h"
	TaskTypeReminder1h          = "reminder:1h"
	TaskTypeConfirmationTimeout = "reminder:confirmation_timeout"
)

// ReminderPayload полезная нагрузка задач напоминаний и таймаута подтверждения
type ReminderPayload struct {
	AppointmentID int64 `json:"appointment_id"`
}

func encodePayload(appointmentID int64) ([]byte, error) {
	return json.Marshal(ReminderPayload{AppointmentID: appointmentID})
}

func decodePayload(data []byte) (ReminderPayload, error) {
	var p ReminderPayload
	err := json.Unmarshal(data, &p)
	return p, err
}
