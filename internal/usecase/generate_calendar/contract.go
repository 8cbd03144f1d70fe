package generate_calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetMasters(ctx context.Context) ([]*domain.Master, error)
	GetSpecializations(ctx context.Context) ([]*domain.Specialization, error)
	GetBookableServices(ctx context.Context) ([]*domain.Service, error)
}

// ScheduleRepository интерфейс репозитория календаря
type ScheduleRepository interface {
	GetKeysInRange(ctx context.Context, from, to time.Time) (map[domain.CalendarKey]struct{}, error)
	BulkInsert(ctx context.Context, slots []*domain.CalendarSlot) error
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
