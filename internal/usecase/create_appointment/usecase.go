package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonService/internal/infra/storage/schedule"
)

// UseCase создание записи с проверкой конфликтов.
// Порядок проверок фиксирован: сначала пересечения с записями самого клиента,
// затем занятость мастера. Обе проверки и вставка выполняются в одной
// serializable-транзакции, чтобы исключить гонку параллельных записей
type UseCase struct {
	appointments AppointmentRepository
	schedules    ScheduleRepository
	catalogRepo  CatalogRepository
	clients      ClientRepository
	reminders    ReminderScheduler
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

func NewUseCase(
	appointments AppointmentRepository,
	schedules ScheduleRepository,
	catalogRepo CatalogRepository,
	clients ClientRepository,
	reminders ReminderScheduler,
	txManager TransactionManager,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		schedules:    schedules,
		catalogRepo:  catalogRepo,
		clients:      clients,
		reminders:    reminders,
		txManager:    txManager,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// Execute создает запись. После успешного коммита планирует напоминания и
// сбрасывает выбор клиента; сбой любого из этих шагов не отменяет запись
func (uc *UseCase) Execute(ctx context.Context, input Input) (*domain.Appointment, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Дата сравнивается с "сегодня" в часовом поясе салона
	now := uc.timeProvider.Now().In(uc.location)
	if isDateInPast(input.Date, now) {
		return nil, fmt.Errorf("%w: Execute - date %s, today is %s",
			ErrInvalidDate, input.Date.Format(domain.DateFormat), now.Format(domain.DateFormat))
	}

	service, err := uc.catalogRepo.GetServiceByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: Execute - service %d not found", ErrServiceNotBookable, input.ServiceID)
		}
		return nil, fmt.Errorf("%w: Execute - failed to get service: %v", ErrInternal, err)
	}
	if !service.IsBookable() {
		return nil, fmt.Errorf("%w: Execute - service %d (%s)", ErrServiceNotBookable, service.ID, service.Name)
	}

	if err := uc.checkWorkingHours(ctx, input, service); err != nil {
		return nil, err
	}

	requested, err := uc.requestedInterval(input, service)
	if err != nil {
		return nil, fmt.Errorf("%w: Execute - invalid requested time: %v", ErrInvalidInput, err)
	}

	var created *domain.Appointment
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.checkClientConflicts(ctx, input.ClientID, input.Date, requested); err != nil {
			return err
		}
		if err := uc.checkMasterConflicts(ctx, input.MasterID, input.Date, requested); err != nil {
			return err
		}

		app := &domain.Appointment{
			ClientID:           input.ClientID,
			ServiceID:          input.ServiceID,
			MasterID:           input.MasterID,
			Date:               input.Date,
			StartTime:          input.StartTime,
			Status:             domain.StatusScheduled,
			ConfirmationStatus: domain.ConfirmationPending,
		}

		created, err = uc.appointments.Create(ctx, app)
		if err != nil {
			return fmt.Errorf("%w: Execute - failed to create appointment: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(
		"create_appointment: appointment %d created - client %d, master %d, service %d, %s %s",
		created.ID, created.ClientID, created.MasterID, created.ServiceID,
		created.Date.Format(domain.DateFormat), created.StartTime,
	)

	// Запись уже зафиксирована: отказ планировщика напоминаний или сброса
	// состояния клиента только логируется
	if err := uc.reminders.ScheduleForAppointment(ctx, created); err != nil {
		uc.logger.Error("create_appointment: failed to schedule reminders for appointment %d: %v", created.ID, err)
	}
	uc.resetClientSelection(ctx, input.ClientID)

	return created, nil
}

// checkWorkingHours проверяет, что мастер работает в дату и услуга целиком
// помещается в рабочие часы дня
func (uc *UseCase) checkWorkingHours(ctx context.Context, input Input, service *domain.Service) error {
	daySlot, err := uc.schedules.GetByMasterAndDate(ctx, input.MasterID, input.Date)
	if err != nil {
		if errors.Is(err, schedule.ErrSlotNotFound) {
			return fmt.Errorf("%w: checkWorkingHours - master %d, date %s", ErrMasterNotWorking, input.MasterID, input.Date.Format(domain.DateFormat))
		}
		return fmt.Errorf("%w: checkWorkingHours - failed to get schedule: %v", ErrInternal, err)
	}
	if !daySlot.IsWorkingDay {
		return fmt.Errorf("%w: checkWorkingHours - master %d, date %s (day off)", ErrMasterNotWorking, input.MasterID, input.Date.Format(domain.DateFormat))
	}

	end, err := input.StartTime.AddMinutes(service.DurationMinutes)
	if err != nil {
		return fmt.Errorf("%w: checkWorkingHours - %v", ErrOutsideWorkingHours, err)
	}
	if input.StartTime.IsBefore(daySlot.OpeningTime) || end.IsAfter(daySlot.ClosingTime) {
		return fmt.Errorf(
			"%w: checkWorkingHours - requested %s-%s, working hours %s-%s",
			ErrOutsideWorkingHours, input.StartTime, end, daySlot.OpeningTime, daySlot.ClosingTime,
		)
	}
	return nil
}

func (uc *UseCase) requestedInterval(input Input, service *domain.Service) (domain.Interval, error) {
	start, err := input.StartTime.At(input.Date, uc.location)
	if err != nil {
		return domain.Interval{}, err
	}
	return domain.Interval{
		Start: start,
		End:   start.Add(time.Duration(service.DurationMinutes) * time.Minute),
	}, nil
}

// checkClientConflicts ищет пересечение с активными записями клиента на дату
func (uc *UseCase) checkClientConflicts(ctx context.Context, clientID int64, date time.Time, requested domain.Interval) error {
	existing, err := uc.appointments.GetByClientAndDate(ctx, clientID, date)
	if err != nil {
		return fmt.Errorf("%w: checkClientConflicts - failed to get appointments: %v", ErrInternal, err)
	}

	conflict, svc, err := uc.findOverlap(ctx, existing, requested)
	if err != nil {
		return fmt.Errorf("%w: checkClientConflicts - %v", ErrInternal, err)
	}
	if conflict != nil {
		return newClientBusyError(conflict, svc)
	}
	return nil
}

// checkMasterConflicts ищет пересечение с активными записями мастера на дату
func (uc *UseCase) checkMasterConflicts(ctx context.Context, masterID int64, date time.Time, requested domain.Interval) error {
	existing, err := uc.appointments.GetByMasterAndDate(ctx, masterID, date)
	if err != nil {
		return fmt.Errorf("%w: checkMasterConflicts - failed to get appointments: %v", ErrInternal, err)
	}

	conflict, _, err := uc.findOverlap(ctx, existing, requested)
	if err != nil {
		return fmt.Errorf("%w: checkMasterConflicts - %v", ErrInternal, err)
	}
	if conflict != nil {
		return fmt.Errorf("%w: checkMasterConflicts - appointment %d at %s", ErrSlotTaken, conflict.ID, conflict.StartTime)
	}
	return nil
}

// findOverlap возвращает первую запись, пересекающуюся с запрошенным
// интервалом. Длительности берутся из текущего каталога услуг
func (uc *UseCase) findOverlap(ctx context.Context, existing []*domain.Appointment, requested domain.Interval) (*domain.Appointment, *domain.Service, error) {
	if len(existing) == 0 {
		return nil, nil, nil
	}

	serviceIDs := make([]int64, 0, len(existing))
	for _, app := range existing {
		serviceIDs = append(serviceIDs, app.ServiceID)
	}
	services, err := uc.catalogRepo.GetServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get services: %v", err)
	}

	for _, app := range existing {
		svc, ok := services[app.ServiceID]
		if !ok {
			uc.logger.Warn("findOverlap: appointment %d references unknown service %d", app.ID, app.ServiceID)
			svc = &domain.Service{Name: "неизвестная услуга", DurationMinutes: domain.SlotStepMinutes}
		}

		start, err := app.StartAt(uc.location)
		if err != nil {
			return nil, nil, fmt.Errorf("appointment %d has invalid start time: %v", app.ID, err)
		}
		busy := domain.Interval{
			Start: start,
			End:   start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		}
		if busy.Overlaps(requested) {
			return app, svc, nil
		}
	}
	return nil, nil, nil
}

// resetClientSelection возвращает клиента в главное меню после записи
func (uc *UseCase) resetClientSelection(ctx context.Context, clientID int64) {
	client, err := uc.clients.GetByID(ctx, clientID)
	if err != nil {
		uc.logger.Error("resetClientSelection: failed to get client %d: %v", clientID, err)
		return
	}
	client.ResetSelection()
	client.State = domain.StateActive
	if err := uc.clients.Update(ctx, client); err != nil {
		uc.logger.Error("resetClientSelection: failed to update client %d: %v", clientID, err)
	}
}
