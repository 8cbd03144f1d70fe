package generate_calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

type catalogRepoMock struct {
	masters  []*domain.Master
	specs    []*domain.Specialization
	services []*domain.Service
}

func (m *catalogRepoMock) GetMasters(_ context.Context) ([]*domain.Master, error) {
	return m.masters, nil
}

func (m *catalogRepoMock) GetSpecializations(_ context.Context) ([]*domain.Specialization, error) {
	return m.specs, nil
}

func (m *catalogRepoMock) GetBookableServices(_ context.Context) ([]*domain.Service, error) {
	return m.services, nil
}

type scheduleRepoMock struct {
	existing map[domain.CalendarKey]struct{}
	inserted []*domain.CalendarSlot
}

func (m *scheduleRepoMock) GetKeysInRange(_ context.Context, _, _ time.Time) (map[domain.CalendarKey]struct{}, error) {
	if m.existing == nil {
		return map[domain.CalendarKey]struct{}{}, nil
	}
	return m.existing, nil
}

func (m *scheduleRepoMock) BulkInsert(_ context.Context, slots []*domain.CalendarSlot) error {
	m.inserted = append(m.inserted, slots...)
	for _, s := range slots {
		key := domain.CalendarKey{
			Date:      s.Date.Format(domain.DateFormat),
			MasterID:  s.MasterID,
			ServiceID: s.ServiceID,
		}
		if m.existing == nil {
			m.existing = map[domain.CalendarKey]struct{}{}
		}
		m.existing[key] = struct{}{}
	}
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

func testConfig(horizon int) Config {
	return Config{
		HorizonDays: horizon,
		OpeningTime: types.TimeString("09:00"),
		ClosingTime: types.TimeString("22:00"),
		Location:    time.UTC,
	}
}

func newTestUseCase(cat *catalogRepoMock, sched *scheduleRepoMock, cfg Config) *UseCase {
	return NewUseCase(
		cat,
		sched,
		txManagerMock{},
		&fixedTimeProvider{now: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		cfg,
		nopLogger{},
	)
}

func TestExecute_CreatesSlotsPerMasterServiceDate(t *testing.T) {
	cat := &catalogRepoMock{
		masters: []*domain.Master{{ID: 1, Name: "Анна"}},
		specs:   []*domain.Specialization{{ID: 1, Name: "Стрижка", MasterID: 1}},
		services: []*domain.Service{
			{ID: 10, Name: "Стрижка", ParentServiceID: parentID(1), DurationMinutes: 45},
		},
	}
	sched := &scheduleRepoMock{}
	uc := newTestUseCase(cat, sched, testConfig(5))

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Created)
	assert.Equal(t, 0, result.SkippedMasters)
	require.Len(t, sched.inserted, 5)

	first := sched.inserted[0]
	assert.Equal(t, "2026-09-01", first.Date.Format(domain.DateFormat))
	assert.Equal(t, types.TimeString("09:00"), first.OpeningTime)
	assert.Equal(t, types.TimeString("22:00"), first.ClosingTime)
	assert.True(t, first.IsWorkingDay)

	last := sched.inserted[4]
	assert.Equal(t, "2026-09-05", last.Date.Format(domain.DateFormat))
}

func TestExecute_Idempotent(t *testing.T) {
	cat := &catalogRepoMock{
		masters: []*domain.Master{{ID: 1, Name: "Анна"}, {ID: 2, Name: "Борис"}},
		specs: []*domain.Specialization{
			{ID: 1, Name: "Стрижка", MasterID: 1},
			{ID: 2, Name: "стрижка ", MasterID: 2}, // регистр и пробелы не важны
		},
		services: []*domain.Service{
			{ID: 10, Name: "Стрижка", ParentServiceID: parentID(1), DurationMinutes: 45},
		},
	}
	sched := &scheduleRepoMock{}
	uc := newTestUseCase(cat, sched, testConfig(3))

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result.Created)

	// Повторный прогон не создает дублей
	result, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Len(t, sched.inserted, 6)
}

func TestExecute_FillsOnlyMissingKeys(t *testing.T) {
	cat := &catalogRepoMock{
		masters:  []*domain.Master{{ID: 1, Name: "Анна"}},
		specs:    []*domain.Specialization{{ID: 1, Name: "Стрижка", MasterID: 1}},
		services: []*domain.Service{{ID: 10, Name: "Стрижка", ParentServiceID: parentID(1), DurationMinutes: 45}},
	}
	sched := &scheduleRepoMock{existing: map[domain.CalendarKey]struct{}{
		{Date: "2026-09-01", MasterID: 1, ServiceID: 10}: {},
		{Date: "2026-09-02", MasterID: 1, ServiceID: 10}: {},
	}}
	uc := newTestUseCase(cat, sched, testConfig(3))

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, sched.inserted, 1)
	assert.Equal(t, "2026-09-03", sched.inserted[0].Date.Format(domain.DateFormat))
}

func TestExecute_SkipsMasterWithoutEligibleServices(t *testing.T) {
	cat := &catalogRepoMock{
		masters: []*domain.Master{
			{ID: 1, Name: "Анна"},
			{ID: 2, Name: "Борис"}, // специализация не совпадает ни с одной услугой
		},
		specs: []*domain.Specialization{
			{ID: 1, Name: "Стрижка", MasterID: 1},
			{ID: 2, Name: "Массаж", MasterID: 2},
		},
		services: []*domain.Service{{ID: 10, Name: "Стрижка", ParentServiceID: parentID(1), DurationMinutes: 45}},
	}
	sched := &scheduleRepoMock{}
	uc := newTestUseCase(cat, sched, testConfig(2))

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.SkippedMasters)
}

func TestExecute_InvalidConfig(t *testing.T) {
	cat := &catalogRepoMock{}
	sched := &scheduleRepoMock{}

	uc := newTestUseCase(cat, sched, testConfig(0))
	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig(10)
	cfg.OpeningTime = types.TimeString("22:00")
	cfg.ClosingTime = types.TimeString("09:00")
	uc = newTestUseCase(cat, sched, cfg)
	_, err = uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
