package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, app *domain.Appointment) (*domain.Appointment, error)
	GetByMasterAndDate(ctx context.Context, masterID int64, date time.Time) ([]*domain.Appointment, error)
	GetByClientAndDate(ctx context.Context, clientID int64, date time.Time) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория календаря
type ScheduleRepository interface {
	GetByMasterAndDate(ctx context.Context, masterID int64, date time.Time) (*domain.CalendarSlot, error)
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetServicesByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Service, error)
}

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

// ReminderScheduler интерфейс планировщика напоминаний.
// Вызывается после коммита транзакции: сбой планирования не отменяет запись
type ReminderScheduler interface {
	ScheduleForAppointment(ctx context.Context, app *domain.Appointment) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
