package appointment

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

var columns = []string{
	"id",
	"client_id",
	"service_id",
	"master_id",
	"date",
	"start_time",
	"status",
	"confirmation_status",
	"reminder_sent",
	"reminder_task_id",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями клиентов
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись со статусом scheduled/pending и версией 1
// Если в контексте есть активная транзакция, выполняется в ней
func (r *Repository) Create(ctx context.Context, app *domain.Appointment) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"client_id",
			"service_id",
			"master_id",
			"date",
			"start_time",
			"status",
			"confirmation_status",
			"reminder_sent",
			"reminder_task_id",
			"version",
		).
		Values(
			app.ClientID,
			app.ServiceID,
			app.MasterID,
			app.Date,
			app.StartTime,
			app.Status,
			app.ConfirmationStatus,
			app.ReminderSent,
			app.ReminderTaskID,
			1,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&app.ID,
		&app.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	app.CreatedAt = createdAt.Time
	app.UpdatedAt = updatedAt.Time

	return app, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	app, err := r.scanOne(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return app, nil
}

// GetByMasterAndDate получает активные записи мастера на дату,
// отсортированные по времени начала.
// Внутри транзакции добавляет FOR UPDATE (проверка занятости перед вставкой)
func (r *Repository) GetByMasterAndDate(ctx context.Context, masterID int64, date time.Time) ([]*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"master_id": masterID, "date": date}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("start_time ASC")

	if txmanager.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMasterAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByMasterAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetByClientAndDate получает активные записи клиента на дату (по всем мастерам)
func (r *Repository) GetByClientAndDate(ctx context.Context, clientID int64, date time.Time) ([]*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"client_id": clientID, "date": date}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("start_time ASC")

	if txmanager.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetFutureByClient получает будущие активные записи клиента
// начиная с указанной даты, по возрастанию даты и времени
func (r *Repository) GetFutureByClient(ctx context.Context, clientID int64, from time.Time) ([]*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("date ASC, start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetFutureByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetFutureByClient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// UpdateWithVersion сохраняет изменяемые поля записи с проверкой версии
// (compare-and-swap по колонке version). При несовпадении версии возвращает
// ErrVersionConflict - вызывающий обязан перечитать запись и повторить
func (r *Repository) UpdateWithVersion(ctx context.Context, app *domain.Appointment) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", app.Status).
		Set("confirmation_status", app.ConfirmationStatus).
		Set("reminder_sent", app.ReminderSent).
		Set("reminder_task_id", app.ReminderTaskID).
		Set("version", app.Version+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": app.ID, "version": app.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	app.Version++
	return nil
}

// Delete удаляет запись по ID
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// DeleteOlderThan удаляет записи старше cutoff независимо от статуса
// Используется фоновой чисткой устаревших записей
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
		Where(squirrel.Lt{"date": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanOne(row rowScanner) (*domain.Appointment, error) {
	var app domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&app.ID,
		&app.ClientID,
		&app.ServiceID,
		&app.MasterID,
		&app.Date,
		&app.StartTime,
		&app.Status,
		&app.ConfirmationStatus,
		&app.ReminderSent,
		&app.ReminderTaskID,
		&app.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.CreatedAt = createdAt.Time
	app.UpdatedAt = updatedAt.Time
	return &app, nil
}

func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	apps := make([]*domain.Appointment, 0)
	for rows.Next() {
		app, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan appointment: %v", ErrScanRow, err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}

	return apps, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
