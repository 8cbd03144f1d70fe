package generate_calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// Config параметры генерации календаря
type Config struct {
	HorizonDays int              // глубина генерации в днях
	OpeningTime types.TimeString // начало рабочего дня
	ClosingTime types.TimeString // конец рабочего дня
	Location    *time.Location   // часовой пояс салона
}

// Result результат одного прогона генерации
type Result struct {
	Created        int // количество вставленных строк
	SkippedMasters int // мастера без подходящих услуг
}

// UseCase use case генерации скользящего календаря рабочих дней
// Для каждой пары (мастер, подходящая услуга) и каждой даты горизонта
// создает запись календаря, если ее еще нет. Повторный запуск ничего
// не дублирует: существующие ключи выбираются заранее одним запросом
type UseCase struct {
	catalogRepo  CatalogRepository
	scheduleRepo ScheduleRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:  catalogRepo,
		scheduleRepo: scheduleRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute выполняет один прогон генерации календаря
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	if err := uc.validateConfig(); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.cfg.Location)
	lastDay := today.AddDate(0, 0, uc.cfg.HorizonDays-1)

	uc.logger.Info("GenerateCalendar: run for %s..%s, horizon=%d days",
		today.Format(domain.DateFormat), lastDay.Format(domain.DateFormat), uc.cfg.HorizonDays)

	masters, err := uc.catalogRepo.GetMasters(ctx)
	if err != nil {
		uc.logger.Error("GenerateCalendar: failed to get masters: %v", err)
		return nil, fmt.Errorf("%w: failed to get masters: %v", ErrInternal, err)
	}

	specs, err := uc.catalogRepo.GetSpecializations(ctx)
	if err != nil {
		uc.logger.Error("GenerateCalendar: failed to get specializations: %v", err)
		return nil, fmt.Errorf("%w: failed to get specializations: %v", ErrInternal, err)
	}

	services, err := uc.catalogRepo.GetBookableServices(ctx)
	if err != nil {
		uc.logger.Error("GenerateCalendar: failed to get bookable services: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookable services: %v", ErrInternal, err)
	}

	eligible := eligibleServicesByMaster(masters, specs, services)

	result := &Result{}

	// Вставка выполняется в одной транзакции: при частичном сбое прогон
	// откатывается целиком и безопасно перезапускается
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		existing, err := uc.scheduleRepo.GetKeysInRange(txCtx, today, lastDay)
		if err != nil {
			return fmt.Errorf("%w: failed to get existing keys: %v", ErrInternal, err)
		}

		toInsert := make([]*domain.CalendarSlot, 0)

		for _, master := range masters {
			masterServices := eligible[master.ID]
			if len(masterServices) == 0 {
				uc.logger.Warn("GenerateCalendar: master id=%d (%s) has no bookable services, skipping",
					master.ID, master.Name)
				result.SkippedMasters++
				continue
			}

			for day := 0; day < uc.cfg.HorizonDays; day++ {
				date := today.AddDate(0, 0, day)

				for _, svc := range masterServices {
					key := domain.CalendarKey{
						Date:      date.Format(domain.DateFormat),
						MasterID:  master.ID,
						ServiceID: svc.ID,
					}
					if _, ok := existing[key]; ok {
						continue
					}

					toInsert = append(toInsert, &domain.CalendarSlot{
						Date:         date,
						MasterID:     master.ID,
						ServiceID:    svc.ID,
						OpeningTime:  uc.cfg.OpeningTime,
						ClosingTime:  uc.cfg.ClosingTime,
						IsWorkingDay: true,
					})
				}
			}
		}

		if err := uc.scheduleRepo.BulkInsert(txCtx, toInsert); err != nil {
			return fmt.Errorf("%w: failed to insert calendar slots: %v", ErrInternal, err)
		}

		result.Created = len(toInsert)
		return nil
	})
	if err != nil {
		uc.logger.Error("GenerateCalendar: run failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GenerateCalendar: created %d slots, skipped %d masters",
		result.Created, result.SkippedMasters)

	return result, nil
}

func (uc *UseCase) validateConfig() error {
	if uc.cfg.HorizonDays <= 0 {
		return fmt.Errorf("%w: horizon must be positive", ErrInvalidConfig)
	}
	if uc.cfg.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidConfig)
	}
	if err := uc.cfg.OpeningTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid opening time: %v", ErrInvalidConfig, err)
	}
	if err := uc.cfg.ClosingTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid closing time: %v", ErrInvalidConfig, err)
	}
	if !uc.cfg.OpeningTime.IsBefore(uc.cfg.ClosingTime) {
		return fmt.Errorf("%w: opening time must be before closing time", ErrInvalidConfig)
	}
	return nil
}

// eligibleServicesByMaster сопоставляет мастеров и услуги по названию
// специализации (без учета регистра и пробелов)
func eligibleServicesByMaster(
	masters []*domain.Master,
	specs []*domain.Specialization,
	services []*domain.Service,
) map[int64][]*domain.Service {
	specsByMaster := make(map[int64][]*domain.Specialization)
	for _, s := range specs {
		specsByMaster[s.MasterID] = append(specsByMaster[s.MasterID], s)
	}

	eligible := make(map[int64][]*domain.Service, len(masters))
	for _, master := range masters {
		for _, svc := range services {
			for _, spec := range specsByMaster[master.ID] {
				if spec.Matches(svc.Name) {
					eligible[master.ID] = append(eligible[master.ID], svc)
					break
				}
			}
		}
	}

	return eligible
}
