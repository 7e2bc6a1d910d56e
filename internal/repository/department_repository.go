package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// DepartmentRepository manages department (service category) persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Department, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Department, error)
	ListManagedBy(ctx context.Context, userID string) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentColumns = `id, title, slug, email_address, description, manager_id,
        is_active, auto_assign_to_manager, created, modified`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (title, slug, email_address, description, manager_id,
            is_active, auto_assign_to_manager)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created, modified`
	return r.pool.QueryRow(ctx, query,
		dept.Title,
		dept.Slug,
		dept.EmailAddress,
		dept.Description,
		dept.ManagerID,
		dept.IsActive,
		dept.AutoAssignToManager,
	).Scan(&dept.ID, &dept.Created, &dept.Modified)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET title=$1, slug=$2, email_address=$3, description=$4,
            manager_id=$5, is_active=$6, auto_assign_to_manager=$7, modified=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		dept.Title,
		dept.Slug,
		dept.EmailAddress,
		dept.Description,
		dept.ManagerID,
		dept.IsActive,
		dept.AutoAssignToManager,
		dept.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the department; its tickets go with it (schema cascade).
func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *departmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE slug=$1`
	return r.fetchSingle(ctx, query, slug)
}

func (r *departmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Department, error) {
	var dept domain.Department
	if err := scanDepartment(r.pool.QueryRow(ctx, query, arg), &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, activeOnly bool) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) ListManagedBy(ctx context.Context, userID string) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE manager_id=$1 ORDER BY title`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func scanDepartment(row pgx.Row, dept *domain.Department) error {
	return row.Scan(
		&dept.ID,
		&dept.Title,
		&dept.Slug,
		&dept.EmailAddress,
		&dept.Description,
		&dept.ManagerID,
		&dept.IsActive,
		&dept.AutoAssignToManager,
		&dept.Created,
		&dept.Modified,
	)
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := scanDepartment(rows, &dept); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
