package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonService/pkg/txmanager"
)

// Repository репозиторий календаря рабочих дней
// Строки создаются генератором календаря и далее только читаются
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория календаря
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByMasterAndDate возвращает запись календаря мастера на дату
// Рабочие часы одинаковы для всех услуг мастера в пределах дня,
// поэтому достаточно первой строки по ключу (master, date)
func (r *Repository) GetByMasterAndDate(ctx context.Context, masterID int64, date time.Time) (*domain.CalendarSlot, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"date",
		"master_id",
		"service_id",
		"opening_time",
		"closing_time",
		"is_working_day",
	).
		From("calendar_slots").
		Where(squirrel.Eq{"master_id": masterID, "date": date}).
		OrderBy("service_id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMasterAndDate - build select query: %v", ErrBuildQuery, err)
	}

	var slot domain.CalendarSlot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.Date,
		&slot.MasterID,
		&slot.ServiceID,
		&slot.OpeningTime,
		&slot.ClosingTime,
		&slot.IsWorkingDay,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMasterAndDate - scan slot: %v", ErrScanRow, err)
	}

	return &slot, nil
}

// GetKeysInRange возвращает множество существующих ключей (date, master, service)
// в диапазоне дат. Используется генератором календаря для дедупликации
func (r *Repository) GetKeysInRange(ctx context.Context, from, to time.Time) (map[domain.CalendarKey]struct{}, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("date", "master_id", "service_id").
		From("calendar_slots").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetKeysInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetKeysInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	keys := make(map[domain.CalendarKey]struct{})
	for rows.Next() {
		var date time.Time
		var masterID, serviceID int64
		if err := rows.Scan(&date, &masterID, &serviceID); err != nil {
			return nil, fmt.Errorf("%w: GetKeysInRange - scan key: %v", ErrScanRow, err)
		}
		keys[domain.CalendarKey{
			Date:      date.Format(domain.DateFormat),
			MasterID:  masterID,
			ServiceID: serviceID,
		}] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetKeysInRange - rows error: %v", ErrScanRow, err)
	}

	return keys, nil
}

// BulkInsert вставляет пачку записей календаря одним запросом
func (r *Repository) BulkInsert(ctx context.Context, slots []*domain.CalendarSlot) error {
	if len(slots) == 0 {
		return nil
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("calendar_slots").
		Columns("date", "master_id", "service_id", "opening_time", "closing_time", "is_working_day")

	for _, s := range slots {
		insertBuilder = insertBuilder.Values(
			s.Date,
			s.MasterID,
			s.ServiceID,
			s.OpeningTime,
			s.ClosingTime,
			s.IsWorkingDay,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: BulkInsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: BulkInsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetWorkingDates возвращает множество дат (YYYY-MM-DD) в диапазоне,
// на которые существует хотя бы одна запись рабочего дня
// Используется меню выбора даты для пометки рабочих/выходных дней
func (r *Repository) GetWorkingDates(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT date").
		From("calendar_slots").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		Where(squirrel.Eq{"is_working_day": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("%w: GetWorkingDates - scan date: %v", ErrScanRow, err)
		}
		dates[date.Format(domain.DateFormat)] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWorkingDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}
