package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonService/pkg/txmanager"
)

var serviceColumns = []string{
	"id",
	"name",
	"category",
	"parent_service_id",
	"description",
	"price",
	"duration_minutes",
}

// Repository репозиторий каталога услуг, мастеров и специализаций
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetServiceByID получает услугу по ID
func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - build select query: %v", ErrBuildQuery, err)
	}

	svc, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - scan service: %v", ErrScanRow, err)
	}

	return svc, nil
}

// GetCategories получает услуги верхнего уровня (категории)
func (r *Repository) GetCategories(ctx context.Context) ([]*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where("parent_service_id IS NULL").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCategories - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryServices(ctx, executor, query, args)
}

// GetSubServices получает подуслуги категории
func (r *Repository) GetSubServices(ctx context.Context, parentID int64) ([]*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"parent_service_id": parentID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSubServices - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryServices(ctx, executor, query, args)
}

// GetBookableServices получает все подуслуги с положительной длительностью
// Только они попадают в генерацию календаря
func (r *Repository) GetBookableServices(ctx context.Context) ([]*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where("parent_service_id IS NOT NULL").
		Where(squirrel.Gt{"duration_minutes": 0}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookableServices - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryServices(ctx, executor, query, args)
}

// GetServicesByIDs получает услуги по списку ID одним запросом
// Используется для вычисления длительностей существующих записей
func (r *Repository) GetServicesByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Service, error) {
	result := make(map[int64]*domain.Service, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServicesByIDs - build select query: %v", ErrBuildQuery, err)
	}

	services, err := r.queryServices(ctx, executor, query, args)
	if err != nil {
		return nil, err
	}

	for _, svc := range services {
		result[svc.ID] = svc
	}

	return result, nil
}

// GetMasterByID получает мастера по ID
func (r *Repository) GetMasterByID(ctx context.Context, id int64) (*domain.Master, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name").
		From("masters").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetMasterByID - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Master
	err = executor.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.Name)
	if err == sql.ErrNoRows {
		return nil, ErrMasterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetMasterByID - scan master: %v", ErrScanRow, err)
	}

	return &m, nil
}

// GetMasters получает всех мастеров
func (r *Repository) GetMasters(ctx context.Context) ([]*domain.Master, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name").
		From("masters").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetMasters - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetMasters - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	masters := make([]*domain.Master, 0)
	for rows.Next() {
		var m domain.Master
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("%w: GetMasters - scan master: %v", ErrScanRow, err)
		}
		masters = append(masters, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetMasters - rows error: %v", ErrScanRow, err)
	}

	return masters, nil
}

// GetSpecializations получает все специализации всех мастеров
// Сопоставление с услугами выполняется в бизнес-логике по названию
func (r *Repository) GetSpecializations(ctx context.Context) ([]*domain.Specialization, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "master_id").
		From("specializations").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecializations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecializations - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	specs := make([]*domain.Specialization, 0)
	for rows.Next() {
		var s domain.Specialization
		if err := rows.Scan(&s.ID, &s.Name, &s.MasterID); err != nil {
			return nil, fmt.Errorf("%w: GetSpecializations - scan specialization: %v", ErrScanRow, err)
		}
		specs = append(specs, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetSpecializations - rows error: %v", ErrScanRow, err)
	}

	return specs, nil
}

func (r *Repository) queryServices(ctx context.Context, executor txmanager.DBExecutor, query string, args []interface{}) ([]*domain.Service, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan service: %v", ErrScanRow, err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

func scanService(row interface{ Scan(...interface{}) error }) (*domain.Service, error) {
	var svc domain.Service
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.ParentServiceID,
		&svc.Description,
		&svc.Price,
		&svc.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
