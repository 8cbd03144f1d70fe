package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// ConfirmationStatus represents the reminder confirmation state of an appointment
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationExpired   ConfirmationStatus = "expired"
)

// Appointment represents a client's booking with a master for a service
type Appointment struct {
	ID                 int64
	ClientID           int64
	ServiceID          int64
	MasterID           int64
	Date               time.Time
	StartTime          types.TimeString
	Status             AppointmentStatus
	ConfirmationStatus ConfirmationStatus
	ReminderSent       bool
	ReminderTaskID     *string // handle последней запланированной задачи напоминания
	Version            int64   // счетчик версий для оптимистичной блокировки

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the derived end time for the given service duration.
// End time is never stored: it always follows the service's current duration.
func (a *Appointment) EndTime(durationMinutes int) (types.TimeString, error) {
	return a.StartTime.AddMinutes(durationMinutes)
}

// IsActive returns true if the appointment still occupies its time slot
func (a *Appointment) IsActive() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// IsPendingConfirmation returns true if the appointment still awaits the
// client's reply to a reminder
func (a *Appointment) IsPendingConfirmation() bool {
	return a.ConfirmationStatus == ConfirmationPending
}

// StartAt привязывает дату и время начала к локали салона
func (a *Appointment) StartAt(loc *time.Location) (time.Time, error) {
	return a.StartTime.At(a.Date, loc)
}
