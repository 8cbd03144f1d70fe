package reminders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

type appointmentRepoMock struct {
	store map[int64]*domain.Appointment

	// conflictsLeft заставляет UpdateWithVersion вернуть конфликт версий
	// указанное число раз
	conflictsLeft int
	deleted       []int64
}

func newAppointmentRepoMock(apps ...*domain.Appointment) *appointmentRepoMock {
	m := &appointmentRepoMock{store: map[int64]*domain.Appointment{}}
	for _, app := range apps {
		m.store[app.ID] = app
	}
	return m
}

func (m *appointmentRepoMock) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	app, ok := m.store[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *appointmentRepoMock) GetFutureByClient(_ context.Context, clientID int64, _ time.Time) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	// map iteration is unordered, order by ID
	for id := int64(0); id <= 1000; id++ {
		if app, ok := m.store[id]; ok && app.ClientID == clientID {
			copied := *app
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *appointmentRepoMock) UpdateWithVersion(_ context.Context, app *domain.Appointment) error {
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return appointmentRepo.ErrVersionConflict
	}
	current, ok := m.store[app.ID]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if current.Version != app.Version {
		return appointmentRepo.ErrVersionConflict
	}
	copied := *app
	copied.Version++
	m.store[app.ID] = &copied
	return nil
}

func (m *appointmentRepoMock) Delete(_ context.Context, id int64) error {
	delete(m.store, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *appointmentRepoMock) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for id, app := range m.store {
		if app.Date.Before(cutoff) {
			delete(m.store, id)
			count++
		}
	}
	return count, nil
}

type clientRepoMock struct {
	client *domain.Client
}

func (m *clientRepoMock) GetByID(_ context.Context, _ int64) (*domain.Client, error) {
	copied := *m.client
	return &copied, nil
}

func (m *clientRepoMock) Update(_ context.Context, c *domain.Client) error {
	m.client = c
	return nil
}

type catalogRepoMock struct{}

func (catalogRepoMock) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	return &domain.Service{ID: id, Name: "Стрижка", DurationMinutes: 45}, nil
}

func (catalogRepoMock) GetMasterByID(_ context.Context, id int64) (*domain.Master, error) {
	return &domain.Master{ID: id, Name: "Анна"}, nil
}

type scheduledTask struct {
	taskType string
	fireAt   time.Time
}

type schedulerMock struct {
	nextID    int
	scheduled map[string]scheduledTask
	revoked   []string
}

func newSchedulerMock() *schedulerMock {
	return &schedulerMock{scheduled: map[string]scheduledTask{}}
}

func (m *schedulerMock) Schedule(_ context.Context, taskType string, _ []byte, fireAt time.Time) (string, error) {
	m.nextID++
	id := fmt.Sprintf("task-%d", m.nextID)
	m.scheduled[id] = scheduledTask{taskType: taskType, fireAt: fireAt}
	return id, nil
}

func (m *schedulerMock) Revoke(_ context.Context, taskID string) error {
	m.revoked = append(m.revoked, taskID)
	delete(m.scheduled, taskID)
	return nil
}

type senderMock struct {
	messages []string
	err      error
}

func (m *senderMock) SendMessage(_ context.Context, _, text string) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, text)
	return nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	appointments *appointmentRepoMock
	clients      *clientRepoMock
	scheduler    *schedulerMock
	sender       *senderMock
	now          time.Time
	svc          *Service
}

func newFixture(apps ...*domain.Appointment) *fixture {
	appointments := newAppointmentRepoMock(apps...)
	clients := &clientRepoMock{client: &domain.Client{ID: 1, Phone: "79990000001@c.us", Name: "Иван", State: domain.StateActive}}
	scheduler := newSchedulerMock()
	sender := &senderMock{}
	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	svc := NewService(
		appointments, clients, catalogRepoMock{}, scheduler, sender,
		&fixedTimeProvider{now: now},
		time.UTC,
		nopLogger{},
	)
	return &fixture{appointments: appointments, clients: clients, scheduler: scheduler, sender: sender, now: now, svc: svc}
}

func pendingAppointment(id int64, date time.Time, start string) *domain.Appointment {
	return &domain.Appointment{
		ID:                 id,
		ClientID:           1,
		ServiceID:          10,
		MasterID:           2,
		Date:               date,
		StartTime:          types.TimeString(start),
		Status:             domain.StatusScheduled,
		ConfirmationStatus: domain.ConfirmationPending,
		Version:            1,
	}
}

func TestScheduleForAppointment_BothRemindersInFuture(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 9, 12, 12, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)

	err := f.svc.ScheduleForAppointment(context.Background(), app)
	require.NoError(t, err)

	require.Len(t, f.scheduler.scheduled, 2)
	var types24, types1 bool
	for _, task := range f.scheduler.scheduled {
		switch task.taskType {
		case TaskTypeReminder24h:
			types24 = true
			assert.Equal(t, start.Add(-24*time.Hour), task.fireAt)
		case TaskTypeReminder1h:
			types1 = true
			assert.Equal(t, start.Add(-time.Hour), task.fireAt)
		}
	}
	assert.True(t, types24)
	assert.True(t, types1)

	// Handle последней задачи сохранен на записи
	stored := f.appointments.store[100]
	require.NotNil(t, stored.ReminderTaskID)
	assert.Equal(t, "task-2", *stored.ReminderTaskID)
}

func TestScheduleForAppointment_SkipsPastFireTimes(t *testing.T) {
	// Запись сегодня в 12:00, до нее 3 часа: 24-часовое уже в прошлом
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)

	err := f.svc.ScheduleForAppointment(context.Background(), app)
	require.NoError(t, err)

	require.Len(t, f.scheduler.scheduled, 1)
	for _, task := range f.scheduler.scheduled {
		assert.Equal(t, TaskTypeReminder1h, task.taskType)
	}
}

func TestScheduleForAppointment_RevokesPreviousTask(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	oldTask := "task-stale"
	app.ReminderTaskID = &oldTask
	f := newFixture(app)

	err := f.svc.ScheduleForAppointment(context.Background(), app)
	require.NoError(t, err)
	assert.Contains(t, f.scheduler.revoked, "task-stale")
}

func TestHandleReminder24h_SendsOnce(t *testing.T) {
	date := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)

	payload, err := encodePayload(100)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleReminder24h(context.Background(), payload))
	require.Len(t, f.sender.messages, 1)
	assert.Contains(t, f.sender.messages[0], "Через 24 часа")
	assert.Contains(t, f.sender.messages[0], "Стрижка")
	assert.Contains(t, f.sender.messages[0], "Анна")

	// Клиент переведен в ожидание ответа
	assert.Equal(t, domain.StateAwaitingConfirmation, f.clients.client.State)
	assert.True(t, f.appointments.store[100].ReminderSent)

	// Повторное срабатывание ничего не отправляет
	require.NoError(t, f.svc.HandleReminder24h(context.Background(), payload))
	assert.Len(t, f.sender.messages, 1)
}

func TestHandleReminder1h_SchedulesConfirmationTimeout(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)

	payload, err := encodePayload(100)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleReminder1h(context.Background(), payload))
	require.Len(t, f.sender.messages, 1)
	assert.Contains(t, f.sender.messages[0], "Через 1 час")

	require.Len(t, f.scheduler.scheduled, 1)
	for id, task := range f.scheduler.scheduled {
		assert.Equal(t, TaskTypeConfirmationTimeout, task.taskType)
		assert.Equal(t, f.now.Add(time.Duration(domain.ConfirmationWindowMin)*time.Minute), task.fireAt)

		stored := f.appointments.store[100]
		require.NotNil(t, stored.ReminderTaskID)
		assert.Equal(t, id, *stored.ReminderTaskID)
	}
}

func TestHandleReminder_SkipsResolvedAppointment(t *testing.T) {
	date := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	app.ConfirmationStatus = domain.ConfirmationConfirmed
	f := newFixture(app)

	payload, err := encodePayload(100)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleReminder24h(context.Background(), payload))
	require.NoError(t, f.svc.HandleReminder1h(context.Background(), payload))
	assert.Empty(t, f.sender.messages)
	assert.Empty(t, f.scheduler.scheduled)
}

func TestHandleConfirmationTimeout_DeletesUnconfirmed(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	taskID := "task-timeout"
	app.ReminderTaskID = &taskID
	f := newFixture(app)
	f.clients.client.State = domain.StateAwaitingConfirmation

	payload, err := encodePayload(100)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleConfirmationTimeout(context.Background(), payload))

	assert.Contains(t, f.appointments.deleted, int64(100))
	require.Len(t, f.sender.messages, 1)
	assert.Contains(t, f.sender.messages[0], "Время подтверждения истекло")
	assert.Equal(t, domain.StateActive, f.clients.client.State)

	// Повторное срабатывание для удаленной записи безвредно
	require.NoError(t, f.svc.HandleConfirmationTimeout(context.Background(), payload))
	assert.Len(t, f.sender.messages, 1)
}

func TestHandleConfirmationTimeout_IgnoresConfirmed(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	app.Status = domain.StatusConfirmed
	app.ConfirmationStatus = domain.ConfirmationConfirmed
	f := newFixture(app)

	payload, err := encodePayload(100)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleConfirmationTimeout(context.Background(), payload))
	assert.Empty(t, f.appointments.deleted)
	assert.Empty(t, f.sender.messages)
}

func TestConfirmLatestPending(t *testing.T) {
	date := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	first := pendingAppointment(100, date, "10:00")
	second := pendingAppointment(101, date, "15:00")
	taskID := "task-pending"
	second.ReminderTaskID = &taskID
	f := newFixture(first, second)

	confirmed, err := f.svc.ConfirmLatestPending(context.Background(), 1)
	require.NoError(t, err)

	// Подтверждается последняя ожидающая запись
	assert.Equal(t, int64(101), confirmed.ID)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	assert.Equal(t, domain.ConfirmationConfirmed, confirmed.ConfirmationStatus)
	assert.Nil(t, confirmed.ReminderTaskID)
	assert.Contains(t, f.scheduler.revoked, "task-pending")
}

func TestConfirmLatestPending_NoPending(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ConfirmLatestPending(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoPendingAppointment)
}

func TestUpdateWithRetry_RecoversFromConflict(t *testing.T) {
	date := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)
	f.appointments.conflictsLeft = 2

	updated, err := f.svc.updateWithRetry(context.Background(), 100, func(a *domain.Appointment) {
		a.ReminderSent = true
	})
	require.NoError(t, err)
	assert.True(t, updated.ReminderSent)
}

func TestUpdateWithRetry_Exhausted(t *testing.T) {
	date := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	app := pendingAppointment(100, date, "12:00")
	f := newFixture(app)
	f.appointments.conflictsLeft = maxVersionRetries

	_, err := f.svc.updateWithRetry(context.Background(), 100, func(a *domain.Appointment) {
		a.ReminderSent = true
	})
	assert.ErrorIs(t, err, ErrRetryExhausted)
}

func TestCleanupOldAppointments(t *testing.T) {
	old := pendingAppointment(100, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), "12:00")
	recent := pendingAppointment(101, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), "12:00")
	f := newFixture(old, recent)

	deleted, err := f.svc.CleanupOldAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	_, ok := f.appointments.store[100]
	assert.False(t, ok)
	_, ok = f.appointments.store[101]
	assert.True(t, ok)
}

func TestHandleReminder_BadPayloadIsDropped(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.svc.HandleReminder24h(context.Background(), []byte("not-json")))
	assert.NoError(t, f.svc.HandleReminder1h(context.Background(), []byte("not-json")))
	assert.NoError(t, f.svc.HandleConfirmationTimeout(context.Background(), []byte("not-json")))
}
