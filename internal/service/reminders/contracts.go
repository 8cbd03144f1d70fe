package reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetFutureByClient(ctx context.Context, clientID int64, from time.Time) ([]*domain.Appointment, error)
	UpdateWithVersion(ctx context.Context, app *domain.Appointment) error
	Delete(ctx context.Context, id int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetMasterByID(ctx context.Context, id int64) (*domain.Master, error)
}

// JobScheduler интерфейс планировщика отложенных задач
type JobScheduler interface {
	Schedule(ctx context.Context, taskType string, payload []byte, fireAt time.Time) (string, error)
	Revoke(ctx context.Context, taskID string) error
}

// MessageSender интерфейс отправки сообщений клиентам
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) error
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
