package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// UseCase расчет доступных слотов для записи
type UseCase struct {
	appointments AppointmentRepository
	schedules    ScheduleRepository
	catalogRepo  CatalogRepository
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

func NewUseCase(
	appointments AppointmentRepository,
	schedules ScheduleRepository,
	catalogRepo CatalogRepository,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		schedules:    schedules,
		catalogRepo:  catalogRepo,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// Execute возвращает отсортированный список доступных времен начала ("HH:MM")
// для мастера, услуги и даты. Пустой список - валидный результат: день рабочий,
// но свободного времени под услугу нет.
func (uc *UseCase) Execute(ctx context.Context, masterID, serviceID int64, date time.Time) ([]types.TimeString, error) {
	if err := validateInput(masterID, serviceID, date); err != nil {
		return nil, err
	}

	// Дата сравнивается с "сегодня" в часовом поясе салона
	if isDateInPast(date, uc.timeProvider.Now().In(uc.location)) {
		return nil, fmt.Errorf("%w: Execute - date %s is in the past", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	service, err := uc.catalogRepo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: Execute - service %d not found", ErrServiceNotBookable, serviceID)
		}
		return nil, fmt.Errorf("%w: Execute - failed to get service: %v", ErrInternal, err)
	}
	if !service.IsBookable() {
		return nil, fmt.Errorf("%w: Execute - service %d (%s)", ErrServiceNotBookable, service.ID, service.Name)
	}

	daySlot, err := uc.schedules.GetByMasterAndDate(ctx, masterID, date)
	if err != nil {
		if errors.Is(err, schedule.ErrSlotNotFound) {
			return nil, fmt.Errorf("%w: Execute - master %d, date %s", ErrMasterNotWorking, masterID, date.Format(domain.DateFormat))
		}
		return nil, fmt.Errorf("%w: Execute - failed to get schedule: %v", ErrInternal, err)
	}
	if !daySlot.IsWorkingDay {
		return nil, fmt.Errorf("%w: Execute - master %d, date %s (day off)", ErrMasterNotWorking, masterID, date.Format(domain.DateFormat))
	}

	working, err := uc.workingInterval(daySlot, date)
	if err != nil {
		return nil, fmt.Errorf("%w: Execute - invalid working hours: %v", ErrInternal, err)
	}

	busy, err := uc.busyIntervals(ctx, masterID, date)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.location)
	sameDay := now.Format(domain.DateFormat) == date.Format(domain.DateFormat)

	slots := buildFreeSlots(working, busy, service.DurationMinutes, now, sameDay)

	uc.logger.Info(
		"get_available_slots: master %d, service %d, date %s - %d slots",
		masterID, serviceID, date.Format(domain.DateFormat), len(slots),
	)

	return slots, nil
}

// workingInterval строит рабочее окно дня в локали салона
func (uc *UseCase) workingInterval(slot *domain.CalendarSlot, date time.Time) (domain.Interval, error) {
	start, err := slot.OpeningTime.At(date, uc.location)
	if err != nil {
		return domain.Interval{}, err
	}
	end, err := slot.ClosingTime.At(date, uc.location)
	if err != nil {
		return domain.Interval{}, err
	}
	return domain.Interval{Start: start, End: end}, nil
}

// busyIntervals собирает занятые интервалы мастера на дату. Длительность
// каждой записи берется из текущего каталога услуг, а не хранится в записи
func (uc *UseCase) busyIntervals(ctx context.Context, masterID int64, date time.Time) ([]domain.Interval, error) {
	appointments, err := uc.appointments.GetByMasterAndDate(ctx, masterID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: busyIntervals - failed to get appointments: %v", ErrInternal, err)
	}
	if len(appointments) == 0 {
		return nil, nil
	}

	serviceIDs := make([]int64, 0, len(appointments))
	for _, appt := range appointments {
		serviceIDs = append(serviceIDs, appt.ServiceID)
	}

	services, err := uc.catalogRepo.GetServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: busyIntervals - failed to get services: %v", ErrInternal, err)
	}

	busy := make([]domain.Interval, 0, len(appointments))
	for _, appt := range appointments {
		svc, ok := services[appt.ServiceID]
		if !ok {
			// услуга удалена из каталога, запись все еще занимает слот -
			// считаем минимальную длительность в один шаг
			uc.logger.Warn("busyIntervals: appointment %d references unknown service %d", appt.ID, appt.ServiceID)
			svc = &domain.Service{DurationMinutes: domain.SlotStepMinutes}
		}

		start, err := appt.StartAt(uc.location)
		if err != nil {
			return nil, fmt.Errorf("%w: busyIntervals - appointment %d has invalid start time: %v", ErrInternal, appt.ID, err)
		}
		busy = append(busy, domain.Interval{
			Start: start,
			End:   start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		})
	}

	return busy, nil
}
