package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
)

// maxVersionRetries предел попыток при конфликте оптимистичной блокировки
const maxVersionRetries = 3

// Service управляет жизненным циклом напоминаний: планирует отложенные задачи
// при создании записи, исполняет их срабатывание и чистит устаревшие записи.
// Все обработчики идемпотентны: повторное срабатывание задачи для уже
// обработанной записи ничего не меняет
type Service struct {
	appointments AppointmentRepository
	clients      ClientRepository
	catalogRepo  CatalogRepository
	scheduler    JobScheduler
	sender       MessageSender
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса напоминаний
func NewService(
	appointments AppointmentRepository,
	clients ClientRepository,
	catalogRepo CatalogRepository,
	scheduler JobScheduler,
	sender MessageSender,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		appointments: appointments,
		clients:      clients,
		catalogRepo:  catalogRepo,
		scheduler:    scheduler,
		sender:       sender,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// ScheduleForAppointment планирует напоминания за 24 часа и за 1 час до начала
// записи. Ранее запланированная задача отзывается, чтобы не было двойных
// отправок при перепланировании. Напоминания, чье время уже прошло,
// пропускаются с записью в лог
func (s *Service) ScheduleForAppointment(ctx context.Context, app *domain.Appointment) error {
	if app.ReminderTaskID != nil {
		if err := s.scheduler.Revoke(ctx, *app.ReminderTaskID); err != nil {
			s.logger.Error("ScheduleForAppointment: failed to revoke task %s for appointment %d: %v", *app.ReminderTaskID, app.ID, err)
		}
	}

	startAt, err := app.StartAt(s.location)
	if err != nil {
		return fmt.Errorf("%w: ScheduleForAppointment - invalid start time of appointment %d: %v", ErrInternal, app.ID, err)
	}

	payload, err := encodePayload(app.ID)
	if err != nil {
		return fmt.Errorf("%w: ScheduleForAppointment - failed to encode payload: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	fire24h := startAt.Add(-time.Duration(domain.ReminderFirstHours) * time.Hour)
	fire1h := startAt.Add(-time.Duration(domain.ReminderSecondHours) * time.Hour)

	var lastTaskID string

	if fire24h.After(now) {
		taskID, err := s.scheduler.Schedule(ctx, TaskTypeReminder24h, payload, fire24h)
		if err != nil {
			return fmt.Errorf("%w: ScheduleForAppointment - failed to schedule 24h reminder: %v", ErrInternal, err)
		}
		lastTaskID = taskID
		s.logger.Info("ScheduleForAppointment: 24h reminder for appointment %d scheduled at %s", app.ID, fire24h.Format(time.RFC3339))
	} else {
		s.logger.Warn("ScheduleForAppointment: 24h reminder time for appointment %d already passed, skipping", app.ID)
	}

	if fire1h.After(now) {
		taskID, err := s.scheduler.Schedule(ctx, TaskTypeReminder1h, payload, fire1h)
		if err != nil {
			return fmt.Errorf("%w: ScheduleForAppointment - failed to schedule 1h reminder: %v", ErrInternal, err)
		}
		lastTaskID = taskID
		s.logger.Info("ScheduleForAppointment: 1h reminder for appointment %d scheduled at %s", app.ID, fire1h.Format(time.RFC3339))
	} else {
		s.logger.Warn("ScheduleForAppointment: 1h reminder time for appointment %d already passed, skipping", app.ID)
	}

	if lastTaskID == "" {
		return nil
	}

	_, err = s.updateWithRetry(ctx, app.ID, func(a *domain.Appointment) {
		a.ReminderTaskID = &lastTaskID
	})
	if err != nil {
		return fmt.Errorf("%w: ScheduleForAppointment - failed to store task handle: %v", ErrInternal, err)
	}
	return nil
}

// HandleReminder24h обработчик напоминания за 24 часа
func (s *Service) HandleReminder24h(ctx context.Context, payload []byte) error {
	p, err := decodePayload(payload)
	if err != nil {
		s.logger.Error("HandleReminder24h: invalid payload: %v", err)
		return nil
	}

	app, ok := s.loadForReminder(ctx, p.AppointmentID, "HandleReminder24h")
	if !ok {
		return nil
	}
	if app.ReminderSent {
		s.logger.Info("HandleReminder24h: reminder for appointment %d already sent", app.ID)
		return nil
	}

	if err := s.sendReminderPrompt(ctx, app, domain.ReminderFirstHours); err != nil {
		return err
	}

	_, err = s.updateWithRetry(ctx, app.ID, func(a *domain.Appointment) {
		a.ReminderSent = true
	})
	if err != nil {
		return fmt.Errorf("%w: HandleReminder24h - failed to mark reminder sent: %v", ErrInternal, err)
	}
	return nil
}

// HandleReminder1h обработчик напоминания за 1 час. Дополнительно к
// напоминанию планирует задачу таймаута подтверждения через 10 минут:
// неподтвержденная запись будет удалена
func (s *Service) HandleReminder1h(ctx context.Context, payload []byte) error {
	p, err := decodePayload(payload)
	if err != nil {
		s.logger.Error("HandleReminder1h: invalid payload: %v", err)
		return nil
	}

	app, ok := s.loadForReminder(ctx, p.AppointmentID, "HandleReminder1h")
	if !ok {
		return nil
	}

	if err := s.sendReminderPrompt(ctx, app, domain.ReminderSecondHours); err != nil {
		return err
	}

	timeoutPayload, err := encodePayload(app.ID)
	if err != nil {
		return fmt.Errorf("%w: HandleReminder1h - failed to encode payload: %v", ErrInternal, err)
	}
	fireAt := s.timeProvider.Now().Add(time.Duration(domain.ConfirmationWindowMin) * time.Minute)
	taskID, err := s.scheduler.Schedule(ctx, TaskTypeConfirmationTimeout, timeoutPayload, fireAt)
	if err != nil {
		return fmt.Errorf("%w: HandleReminder1h - failed to schedule confirmation timeout: %v", ErrInternal, err)
	}
	s.logger.Info("HandleReminder1h: confirmation timeout for appointment %d scheduled at %s", app.ID, fireAt.Format(time.RFC3339))

	_, err = s.updateWithRetry(ctx, app.ID, func(a *domain.Appointment) {
		a.ReminderSent = true
		a.ReminderTaskID = &taskID
	})
	if err != nil {
		return fmt.Errorf("%w: HandleReminder1h - failed to store task handle: %v", ErrInternal, err)
	}
	return nil
}

// HandleConfirmationTimeout обработчик таймаута подтверждения: если клиент так
// и не ответил, запись удаляется, слот освобождается
func (s *Service) HandleConfirmationTimeout(ctx context.Context, payload []byte) error {
	p, err := decodePayload(payload)
	if err != nil {
		s.logger.Error("HandleConfirmationTimeout: invalid payload: %v", err)
		return nil
	}

	app, err := s.appointments.GetByID(ctx, p.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Info("HandleConfirmationTimeout: appointment %d no longer exists", p.AppointmentID)
			return nil
		}
		return fmt.Errorf("%w: HandleConfirmationTimeout - failed to get appointment: %v", ErrInternal, err)
	}

	if !app.IsPendingConfirmation() {
		s.logger.Info("HandleConfirmationTimeout: appointment %d already resolved (%s)", app.ID, app.ConfirmationStatus)
		return nil
	}

	if err := s.appointments.Delete(ctx, app.ID); err != nil {
		return fmt.Errorf("%w: HandleConfirmationTimeout - failed to delete appointment %d: %v", ErrInternal, app.ID, err)
	}
	s.logger.Info("HandleConfirmationTimeout: appointment %d deleted, confirmation window expired", app.ID)

	client, err := s.clients.GetByID(ctx, app.ClientID)
	if err != nil {
		s.logger.Error("HandleConfirmationTimeout: failed to get client %d: %v", app.ClientID, err)
		return nil
	}

	if err := s.sender.SendMessage(ctx, client.Phone, "⌛ Время подтверждения истекло. Запись автоматически отменена."); err != nil {
		s.logger.Error("HandleConfirmationTimeout: failed to notify client %d: %v", client.ID, err)
	}

	client.ResetSelection()
	client.State = domain.StateActive
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("HandleConfirmationTimeout: failed to reset client %d state: %v", client.ID, err)
	}

	if app.ReminderTaskID != nil {
		if err := s.scheduler.Revoke(ctx, *app.ReminderTaskID); err != nil {
			s.logger.Error("HandleConfirmationTimeout: failed to revoke task %s: %v", *app.ReminderTaskID, err)
		}
	}

	return nil
}

// ConfirmLatestPending подтверждает последнюю запись клиента, ожидающую
// подтверждения. Отзывает еще не сработавшие задачи напоминаний
func (s *Service) ConfirmLatestPending(ctx context.Context, clientID int64) (*domain.Appointment, error) {
	today := s.today()
	future, err := s.appointments.GetFutureByClient(ctx, clientID, today)
	if err != nil {
		return nil, fmt.Errorf("%w: ConfirmLatestPending - failed to get appointments: %v", ErrInternal, err)
	}

	var pending *domain.Appointment
	for _, app := range future {
		if app.IsPendingConfirmation() {
			pending = app
		}
	}
	if pending == nil {
		return nil, ErrNoPendingAppointment
	}

	if pending.ReminderTaskID != nil {
		if err := s.scheduler.Revoke(ctx, *pending.ReminderTaskID); err != nil {
			s.logger.Error("ConfirmLatestPending: failed to revoke task %s: %v", *pending.ReminderTaskID, err)
		}
	}

	confirmed, err := s.updateWithRetry(ctx, pending.ID, func(a *domain.Appointment) {
		a.Status = domain.StatusConfirmed
		a.ConfirmationStatus = domain.ConfirmationConfirmed
		a.ReminderTaskID = nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ConfirmLatestPending - failed to confirm appointment %d: %v", ErrInternal, pending.ID, err)
	}

	s.logger.Info("ConfirmLatestPending: appointment %d confirmed by client %d", confirmed.ID, clientID)
	return confirmed, nil
}

// CleanupOldAppointments удаляет записи старше domain.CleanupAfterDays дней
// независимо от статуса. Ошибки логируются без повторных попыток
func (s *Service) CleanupOldAppointments(ctx context.Context) (int64, error) {
	cutoff := s.today().AddDate(0, 0, -domain.CleanupAfterDays)
	deleted, err := s.appointments.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("CleanupOldAppointments: sweep failed: %v", err)
		return 0, fmt.Errorf("%w: CleanupOldAppointments - %v", ErrInternal, err)
	}
	s.logger.Info("CleanupOldAppointments: deleted %d appointments older than %s", deleted, cutoff.Format(domain.DateFormat))
	return deleted, nil
}

// loadForReminder загружает запись и применяет общие guard-проверки
// напоминаний. Возвращает false, если напоминание отправлять не нужно
func (s *Service) loadForReminder(ctx context.Context, appointmentID int64, op string) (*domain.Appointment, bool) {
	app, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Info("%s: appointment %d no longer exists", op, appointmentID)
		} else {
			s.logger.Error("%s: failed to get appointment %d: %v", op, appointmentID, err)
		}
		return nil, false
	}

	if !app.IsActive() {
		s.logger.Info("%s: appointment %d is not active (%s)", op, app.ID, app.Status)
		return nil, false
	}
	if !app.IsPendingConfirmation() {
		s.logger.Info("%s: appointment %d already resolved (%s)", op, app.ID, app.ConfirmationStatus)
		return nil, false
	}

	startAt, err := app.StartAt(s.location)
	if err != nil {
		s.logger.Error("%s: appointment %d has invalid start time: %v", op, app.ID, err)
		return nil, false
	}
	if !startAt.After(s.timeProvider.Now()) {
		s.logger.Warn("%s: appointment %d already started, skipping reminder", op, app.ID)
		return nil, false
	}

	return app, true
}

// sendReminderPrompt отправляет напоминание и переводит клиента в состояние
// ожидания ответа
func (s *Service) sendReminderPrompt(ctx context.Context, app *domain.Appointment, hoursLeft int) error {
	client, err := s.clients.GetByID(ctx, app.ClientID)
	if err != nil {
		return fmt.Errorf("%w: sendReminderPrompt - failed to get client %d: %v", ErrInternal, app.ClientID, err)
	}
	if client.Phone == "" {
		s.logger.Warn("sendReminderPrompt: client %d has no phone, skipping appointment %d", client.ID, app.ID)
		return nil
	}

	text, err := s.reminderText(ctx, app, hoursLeft)
	if err != nil {
		return err
	}

	client.State = domain.StateAwaitingConfirmation
	if err := s.clients.Update(ctx, client); err != nil {
		return fmt.Errorf("%w: sendReminderPrompt - failed to update client %d: %v", ErrInternal, client.ID, err)
	}

	if err := s.sender.SendMessage(ctx, client.Phone, text); err != nil {
		return fmt.Errorf("%w: sendReminderPrompt - failed to send message to client %d: %v", ErrInternal, client.ID, err)
	}
	return nil
}

func (s *Service) reminderText(ctx context.Context, app *domain.Appointment, hoursLeft int) (string, error) {
	service, err := s.catalogRepo.GetServiceByID(ctx, app.ServiceID)
	if err != nil {
		return "", fmt.Errorf("%w: reminderText - failed to get service %d: %v", ErrInternal, app.ServiceID, err)
	}
	master, err := s.catalogRepo.GetMasterByID(ctx, app.MasterID)
	if err != nil {
		return "", fmt.Errorf("%w: reminderText - failed to get master %d: %v", ErrInternal, app.MasterID, err)
	}

	hoursWord := "час"
	if hoursLeft > 1 {
		hoursWord = "часа"
	}

	return fmt.Sprintf(
		"⏳ Напоминание: Через %d %s у вас запись!\n"+
			"💈 Услуга: %s\n"+
			"🕑 Время: %s %s\n"+
			"👨‍💼 Мастер: %s\n"+
			"Для подтверждения записи отправьте '1'\n"+
			"Для отмены записи отправьте '2'",
		hoursLeft, hoursWord,
		service.Name,
		app.Date.Format("02.01.2006"), app.StartTime,
		master.Name,
	), nil
}

// updateWithRetry перечитывает запись и применяет мутацию, повторяя при
// конфликте версий. Каждая итерация работает со свежей копией записи
func (s *Service) updateWithRetry(ctx context.Context, appointmentID int64, mutate func(*domain.Appointment)) (*domain.Appointment, error) {
	for attempt := 1; attempt <= maxVersionRetries; attempt++ {
		app, err := s.appointments.GetByID(ctx, appointmentID)
		if err != nil {
			return nil, fmt.Errorf("updateWithRetry - failed to get appointment %d: %w", appointmentID, err)
		}

		mutate(app)

		err = s.appointments.UpdateWithVersion(ctx, app)
		if err == nil {
			return app, nil
		}
		if errors.Is(err, appointmentRepo.ErrVersionConflict) {
			s.logger.Warn("updateWithRetry: version conflict on appointment %d, attempt %d/%d", appointmentID, attempt, maxVersionRetries)
			continue
		}
		return nil, fmt.Errorf("updateWithRetry - failed to update appointment %d: %w", appointmentID, err)
	}
	return nil, fmt.Errorf("%w: appointment %d", ErrRetryExhausted, appointmentID)
}

// today возвращает начало текущего дня в локали салона
func (s *Service) today() time.Time {
	now := s.timeProvider.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}
