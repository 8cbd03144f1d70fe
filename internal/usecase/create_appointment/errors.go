package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

var (
	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("create_appointment: invalid input")

	// ErrInvalidDate дата записи в прошлом
	ErrInvalidDate = errors.New("create_appointment: date is in the past")

	// ErrServiceNotBookable на услугу нельзя записаться
	ErrServiceNotBookable = errors.New("create_appointment: service is not bookable")

	// ErrMasterNotWorking мастер не работает в запрошенную дату
	ErrMasterNotWorking = errors.New("create_appointment: master is not working on this date")

	// ErrOutsideWorkingHours услуга не помещается в рабочие часы
	ErrOutsideWorkingHours = errors.New("create_appointment: requested time is outside working hours")

	// ErrClientBusy у клиента уже есть пересекающаяся запись
	ErrClientBusy = errors.New("create_appointment: client already has an overlapping appointment")

	// ErrSlotTaken слот мастера уже занят другой записью
	ErrSlotTaken = errors.New("create_appointment: time slot is already taken")

	// ErrInternal внутренняя ошибка при создании записи
	ErrInternal = errors.New("create_appointment: internal error")
)

// ClientBusyError содержит детали пересекающейся записи клиента, чтобы
// проверяющая сторона могла показать клиенту конкретный конфликт
type ClientBusyError struct {
	AppointmentID int64
	ServiceName   string
	StartTime     types.TimeString
	EndTime       types.TimeString
}

func (e *ClientBusyError) Error() string {
	return fmt.Sprintf(
		"%v: appointment %d (%s) at %s-%s",
		ErrClientBusy, e.AppointmentID, e.ServiceName, e.StartTime, e.EndTime,
	)
}

// Unwrap позволяет errors.Is(err, ErrClientBusy)
func (e *ClientBusyError) Unwrap() error {
	return ErrClientBusy
}

func newClientBusyError(app *domain.Appointment, svc *domain.Service) *ClientBusyError {
	end, err := app.EndTime(svc.DurationMinutes)
	if err != nil {
		end = app.StartTime
	}
	return &ClientBusyError{
		AppointmentID: app.ID,
		ServiceName:   svc.Name,
		StartTime:     app.StartTime,
		EndTime:       end,
	}
}
