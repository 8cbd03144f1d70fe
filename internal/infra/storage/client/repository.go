package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonService/pkg/txmanager"
)

var columns = []string{
	"id",
	"phone",
	"name",
	"state",
	"selected_category_id",
	"selected_service_id",
	"selected_master_id",
	"selected_date",
	"week_offset",
}

// Repository репозиторий клиентов и их диалогового состояния
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByPhone получает клиента по номеру телефона (идентификатору чата)
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("clients").
		Where(squirrel.Eq{"phone": phone}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanClient(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - scan client: %v", ErrScanRow, err)
	}

	return c, nil
}

// GetByID получает клиента по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("clients").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanClient(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan client: %v", ErrScanRow, err)
	}

	return c, nil
}

// Create создает нового клиента
func (r *Repository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clients").
		Columns("phone", "name", "state", "week_offset").
		Values(c.Phone, c.Name, c.State, c.WeekOffset).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return c, nil
}

// Update сохраняет имя, состояние диалога и транзиентные поля выбора
// Состояние диалога - last-write-wins: влияет только на роутинг меню
func (r *Repository) Update(ctx context.Context, c *domain.Client) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("clients").
		Set("name", c.Name).
		Set("state", c.State).
		Set("selected_category_id", c.SelectedCategoryID).
		Set("selected_service_id", c.SelectedServiceID).
		Set("selected_master_id", c.SelectedMasterID).
		Set("selected_date", c.SelectedDate).
		Set("week_offset", c.WeekOffset).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

func scanClient(row interface{ Scan(...interface{}) error }) (*domain.Client, error) {
	var c domain.Client
	var selectedDate sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Phone,
		&c.Name,
		&c.State,
		&c.SelectedCategoryID,
		&c.SelectedServiceID,
		&c.SelectedMasterID,
		&selectedDate,
		&c.WeekOffset,
	)
	if err != nil {
		return nil, err
	}

	if selectedDate.Valid {
		c.SelectedDate = &selectedDate.Time
	}

	return &c, nil
}
