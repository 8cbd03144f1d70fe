package conversation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetFutureByClient(ctx context.Context, clientID int64, from time.Time) ([]*domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetCategories(ctx context.Context) ([]*domain.Service, error)
	GetSubServices(ctx context.Context, parentID int64) ([]*domain.Service, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetServicesByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Service, error)
	GetMasters(ctx context.Context) ([]*domain.Master, error)
	GetMasterByID(ctx context.Context, id int64) (*domain.Master, error)
	GetSpecializations(ctx context.Context) ([]*domain.Specialization, error)
}

// ScheduleRepository интерфейс репозитория календаря
type ScheduleRepository interface {
	GetWorkingDates(ctx context.Context, from, to time.Time) (map[string]bool, error)
}

// SlotCalculator интерфейс расчета доступных слотов
type SlotCalculator interface {
	Execute(ctx context.Context, masterID, serviceID int64, date time.Time) ([]types.TimeString, error)
}

// AppointmentCreator интерфейс создания записи с проверкой конфликтов
type AppointmentCreator interface {
	Execute(ctx context.Context, input create_appointment.Input) (*domain.Appointment, error)
}

// ConfirmationService интерфейс подтверждения записей по напоминаниям
type ConfirmationService interface {
	ConfirmLatestPending(ctx context.Context, clientID int64) (*domain.Appointment, error)
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
