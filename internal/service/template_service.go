package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// TemplateInput carries template create/update fields.
type TemplateInput struct {
	Name              string
	DepartmentID      string
	PositionTypes     string
	ChecklistItems    []domain.ChecklistItem
	RequiredEquipment string
	EstimatedDays     int
	IsActive          bool
}

// TemplateService manages the knowledge-base template records.
type TemplateService struct {
	templates   repository.TemplateRepository
	cache       *repository.TemplateCache
	departments repository.DepartmentRepository
}

// NewTemplateService builds the service.
func NewTemplateService(templates repository.TemplateRepository, cache *repository.TemplateCache, departments repository.DepartmentRepository) *TemplateService {
	return &TemplateService{templates: templates, cache: cache, departments: departments}
}

// Create adds a template and invalidates its department's cached list.
func (s *TemplateService) Create(ctx context.Context, input TemplateInput) (*domain.OnboardingTemplate, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	tpl := &domain.OnboardingTemplate{
		Name:              strings.TrimSpace(input.Name),
		DepartmentID:      input.DepartmentID,
		PositionTypes:     input.PositionTypes,
		ChecklistItems:    input.ChecklistItems,
		RequiredEquipment: input.RequiredEquipment,
		EstimatedDays:     input.EstimatedDays,
		IsActive:          input.IsActive,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, tpl.DepartmentID)
	return tpl, nil
}

// Update modifies a template. When the template moves between departments
// both cached lists are dropped.
func (s *TemplateService) Update(ctx context.Context, id string, input TemplateInput) (*domain.OnboardingTemplate, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	oldDepartment := tpl.DepartmentID
	tpl.Name = strings.TrimSpace(input.Name)
	tpl.DepartmentID = input.DepartmentID
	tpl.PositionTypes = input.PositionTypes
	tpl.ChecklistItems = input.ChecklistItems
	tpl.RequiredEquipment = input.RequiredEquipment
	tpl.EstimatedDays = input.EstimatedDays
	tpl.IsActive = input.IsActive

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, tpl.DepartmentID)
	if oldDepartment != tpl.DepartmentID {
		s.cache.Invalidate(ctx, oldDepartment)
	}
	return tpl, nil
}

func (s *TemplateService) validate(ctx context.Context, input TemplateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if input.EstimatedDays < 0 {
		return apperrors.NewValidationError("estimated days cannot be negative", nil)
	}
	if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Get fetches one template.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.OnboardingTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return tpl, nil
}

// List returns templates matching the filter.
func (s *TemplateService) List(ctx context.Context, filter repository.TemplateFilter) ([]domain.OnboardingTemplate, error) {
	items, err := s.templates.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ActiveByDepartment serves the department dropdown, via the cache.
func (s *TemplateService) ActiveByDepartment(ctx context.Context, departmentID string) ([]domain.OnboardingTemplate, error) {
	items, err := s.cache.ActiveByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Delete removes a template.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, tpl.DepartmentID)
	return nil
}
