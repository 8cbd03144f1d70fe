package create_appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

type appointmentRepoMock struct {
	byMaster []*domain.Appointment
	byClient []*domain.Appointment
	created  *domain.Appointment
}

func (m *appointmentRepoMock) Create(_ context.Context, app *domain.Appointment) (*domain.Appointment, error) {
	app.ID = 500
	app.Version = 1
	m.created = app
	return app, nil
}

func (m *appointmentRepoMock) GetByMasterAndDate(_ context.Context, _ int64, _ time.Time) ([]*domain.Appointment, error) {
	return m.byMaster, nil
}

func (m *appointmentRepoMock) GetByClientAndDate(_ context.Context, _ int64, _ time.Time) ([]*domain.Appointment, error) {
	return m.byClient, nil
}

type scheduleRepoMock struct {
	slot *domain.CalendarSlot
}

func (m *scheduleRepoMock) GetByMasterAndDate(_ context.Context, _ int64, date time.Time) (*domain.CalendarSlot, error) {
	return m.slot, nil
}

type catalogRepoMock struct {
	services map[int64]*domain.Service
}

func (m *catalogRepoMock) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, catalog.ErrServiceNotFound
	}
	return svc, nil
}

func (m *catalogRepoMock) GetServicesByIDs(_ context.Context, ids []int64) (map[int64]*domain.Service, error) {
	result := make(map[int64]*domain.Service)
	for _, id := range ids {
		if svc, ok := m.services[id]; ok {
			result[id] = svc
		}
	}
	return result, nil
}

type clientRepoMock struct {
	client  *domain.Client
	updated bool
}

func (m *clientRepoMock) GetByID(_ context.Context, _ int64) (*domain.Client, error) {
	return m.client, nil
}

func (m *clientRepoMock) Update(_ context.Context, c *domain.Client) error {
	m.client = c
	m.updated = true
	return nil
}

type reminderSchedulerMock struct {
	scheduled []*domain.Appointment
	err       error
}

func (m *reminderSchedulerMock) ScheduleForAppointment(_ context.Context, app *domain.Appointment) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, app)
	return nil
}

type txManagerMock struct{}

func (txManagerMock) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

func parentID(id int64) *int64 {
	return &id
}

type fixture struct {
	appointments *appointmentRepoMock
	clients      *clientRepoMock
	reminders    *reminderSchedulerMock
	uc           *UseCase
}

func newFixture(date time.Time) *fixture {
	appointments := &appointmentRepoMock{}
	clients := &clientRepoMock{client: &domain.Client{
		ID:                1,
		Phone:             "79990000001@c.us",
		State:             domain.StateChoosingTime,
		SelectedServiceID: parentID(10),
		SelectedMasterID:  parentID(2),
		SelectedDate:      &date,
	}}
	reminders := &reminderSchedulerMock{}

	cat := &catalogRepoMock{services: map[int64]*domain.Service{
		10: {ID: 10, Name: "Стрижка", ParentServiceID: parentID(1), DurationMinutes: 45},
		11: {ID: 11, Name: "Окрашивание", ParentServiceID: parentID(1), DurationMinutes: 60},
	}}
	sched := &scheduleRepoMock{slot: &domain.CalendarSlot{
		Date:         date,
		MasterID:     2,
		ServiceID:    10,
		OpeningTime:  types.TimeString("09:00"),
		ClosingTime:  types.TimeString("22:00"),
		IsWorkingDay: true,
	}}

	uc := NewUseCase(
		appointments, sched, cat, clients, reminders,
		txManagerMock{},
		&fixedTimeProvider{now: date.AddDate(0, 0, -3)},
		time.UTC,
		nopLogger{},
	)
	return &fixture{appointments: appointments, clients: clients, reminders: reminders, uc: uc}
}

func testInput(date time.Time, start string) Input {
	return Input{
		ClientID:  1,
		MasterID:  2,
		ServiceID: 10,
		Date:      date,
		StartTime: types.TimeString(start),
	}
}

func TestExecute_Success(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	created, err := f.uc.Execute(context.Background(), testInput(date, "12:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(500), created.ID)
	assert.Equal(t, domain.StatusScheduled, created.Status)
	assert.Equal(t, domain.ConfirmationPending, created.ConfirmationStatus)

	// Напоминания запланированы, выбор клиента сброшен
	require.Len(t, f.reminders.scheduled, 1)
	assert.True(t, f.clients.updated)
	assert.Equal(t, domain.StateActive, f.clients.client.State)
	assert.Nil(t, f.clients.client.SelectedServiceID)
}

func TestExecute_ClientConflictCheckedFirst(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	// Конфликт есть и у клиента, и у мастера: клиентский должен победить
	f.appointments.byClient = []*domain.Appointment{
		{ID: 100, ClientID: 1, ServiceID: 11, MasterID: 3, Date: date, StartTime: types.TimeString("11:30"), Status: domain.StatusScheduled},
	}
	f.appointments.byMaster = []*domain.Appointment{
		{ID: 101, ClientID: 7, ServiceID: 11, MasterID: 2, Date: date, StartTime: types.TimeString("12:00"), Status: domain.StatusScheduled},
	}

	_, err := f.uc.Execute(context.Background(), testInput(date, "12:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClientBusy)

	var busy *ClientBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, int64(100), busy.AppointmentID)
	assert.Equal(t, "Окрашивание", busy.ServiceName)
	assert.Equal(t, types.TimeString("11:30"), busy.StartTime)
	assert.Equal(t, types.TimeString("12:30"), busy.EndTime)

	// Запись не создана
	assert.Nil(t, f.appointments.created)
}

func TestExecute_MasterConflict(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	f.appointments.byMaster = []*domain.Appointment{
		{ID: 101, ClientID: 7, ServiceID: 11, MasterID: 2, Date: date, StartTime: types.TimeString("11:30"), Status: domain.StatusScheduled},
	}

	_, err := f.uc.Execute(context.Background(), testInput(date, "12:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Nil(t, f.appointments.created)
}

func TestExecute_AdjacentBookingAllowed(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	// Существующая запись 11:00-12:00 заканчивается ровно в начале новой
	f.appointments.byMaster = []*domain.Appointment{
		{ID: 101, ClientID: 7, ServiceID: 11, MasterID: 2, Date: date, StartTime: types.TimeString("11:00"), Status: domain.StatusScheduled},
	}

	created, err := f.uc.Execute(context.Background(), testInput(date, "12:00"))
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestExecute_ReminderFailureDoesNotUndoBooking(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)
	f.reminders.err = errors.New("redis is down")

	created, err := f.uc.Execute(context.Background(), testInput(date, "12:00"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), created.ID)
	assert.NotNil(t, f.appointments.created)
}

func TestExecute_OutsideWorkingHours(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	// 21:30 + 45 минут выходит за 22:00
	_, err := f.uc.Execute(context.Background(), testInput(date, "21:30"))
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)

	// До открытия
	_, err = f.uc.Execute(context.Background(), testInput(date, "08:00"))
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

func TestExecute_ServiceNotBookable(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date)

	input := testInput(date, "12:00")
	input.ServiceID = 999
	_, err := f.uc.Execute(context.Background(), input)
	assert.ErrorIs(t, err, ErrServiceNotBookable)
}

func TestExecute_PastDateRejected(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(date) // "сегодня" для фикстуры - 2026-09-07

	past := date.AddDate(0, 0, -5)
	_, err := f.uc.Execute(context.Background(), testInput(past, "12:00"))
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Nil(t, f.appointments.created)

	// Запись на сегодняшнюю дату проходит проверку
	today := date.AddDate(0, 0, -3)
	created, err := f.uc.Execute(context.Background(), testInput(today, "12:00"))
	require.NoError(t, err)
	assert.NotNil(t, created)
}
