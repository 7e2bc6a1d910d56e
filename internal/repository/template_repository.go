package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// TemplateFilter captures template list parameters.
type TemplateFilter struct {
	DepartmentID *string
	ActiveOnly   bool
}

// TemplateRepository manages onboarding-template (knowledge base) records.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.OnboardingTemplate) error
	Update(ctx context.Context, tpl *domain.OnboardingTemplate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.OnboardingTemplate, error)
	List(ctx context.Context, filter TemplateFilter) ([]domain.OnboardingTemplate, error)
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository builds repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) Create(ctx context.Context, tpl *domain.OnboardingTemplate) error {
	items, err := json.Marshal(tpl.ChecklistItems)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO onboarding_templates (name, department_id, position_types, checklist_items,
            required_equipment, estimated_days, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created, modified`
	return r.pool.QueryRow(ctx, query,
		tpl.Name,
		tpl.DepartmentID,
		tpl.PositionTypes,
		items,
		tpl.RequiredEquipment,
		tpl.EstimatedDays,
		tpl.IsActive,
	).Scan(&tpl.ID, &tpl.Created, &tpl.Modified)
}

func (r *templateRepository) Update(ctx context.Context, tpl *domain.OnboardingTemplate) error {
	items, err := json.Marshal(tpl.ChecklistItems)
	if err != nil {
		return err
	}
	const query = `
        UPDATE onboarding_templates SET name=$1, department_id=$2, position_types=$3,
            checklist_items=$4, required_equipment=$5, estimated_days=$6, is_active=$7,
            modified=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		tpl.Name,
		tpl.DepartmentID,
		tpl.PositionTypes,
		items,
		tpl.RequiredEquipment,
		tpl.EstimatedDays,
		tpl.IsActive,
		tpl.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM onboarding_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const templateColumns = `id, name, department_id, position_types, checklist_items,
        required_equipment, estimated_days, is_active, created, modified`

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.OnboardingTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM onboarding_templates WHERE id=$1`
	var tpl domain.OnboardingTemplate
	if err := scanTemplate(r.pool.QueryRow(ctx, query, id), &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context, filter TemplateFilter) ([]domain.OnboardingTemplate, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active = TRUE")
	}

	query := fmt.Sprintf(`SELECT %s FROM onboarding_templates WHERE %s ORDER BY name`,
		templateColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OnboardingTemplate
	for rows.Next() {
		var tpl domain.OnboardingTemplate
		if err := scanTemplate(rows, &tpl); err != nil {
			return nil, err
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

func scanTemplate(row pgx.Row, tpl *domain.OnboardingTemplate) error {
	var items []byte
	if err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.DepartmentID,
		&tpl.PositionTypes,
		&items,
		&tpl.RequiredEquipment,
		&tpl.EstimatedDays,
		&tpl.IsActive,
		&tpl.Created,
		&tpl.Modified,
	); err != nil {
		return err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &tpl.ChecklistItems); err != nil {
			return err
		}
	}
	return nil
}
