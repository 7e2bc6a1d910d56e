package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces a title to its URL-safe slug form.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// DepartmentInput carries department create/update fields.
type DepartmentInput struct {
	Title               string
	EmailAddress        string
	Description         string
	ManagerID           *string
	IsActive            bool
	AutoAssignToManager bool
}

// DepartmentService manages service categories.
type DepartmentService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

// NewDepartmentService builds the service.
func NewDepartmentService(departments repository.DepartmentRepository, users repository.UserRepository) *DepartmentService {
	return &DepartmentService{departments: departments, users: users}
}

// Create adds a department. The slug is derived from the title and must be
// unique; new tickets use it as their reference prefix.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if err := s.validateManager(ctx, input.ManagerID); err != nil {
		return nil, err
	}

	slug := Slugify(input.Title)
	if slug == "" {
		return nil, apperrors.NewValidationError("title must contain letters or digits", nil)
	}
	if _, err := s.departments.GetBySlug(ctx, slug); err == nil {
		return nil, apperrors.NewConflict("department already exists", map[string]any{"slug": slug})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	dept := &domain.Department{
		Title:               strings.TrimSpace(input.Title),
		Slug:                slug,
		EmailAddress:        input.EmailAddress,
		Description:         input.Description,
		ManagerID:           input.ManagerID,
		IsActive:            input.IsActive,
		AutoAssignToManager: input.AutoAssignToManager,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// Update modifies a department. The slug never changes after creation so
// existing ticket references stay stable.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if err := s.validateManager(ctx, input.ManagerID); err != nil {
		return nil, err
	}

	dept.Title = strings.TrimSpace(input.Title)
	dept.EmailAddress = input.EmailAddress
	dept.Description = input.Description
	dept.ManagerID = input.ManagerID
	dept.IsActive = input.IsActive
	dept.AutoAssignToManager = input.AutoAssignToManager

	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

func (s *DepartmentService) validateManager(ctx context.Context, managerID *string) error {
	if managerID == nil {
		return nil
	}
	manager, err := s.users.GetByID(ctx, *managerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"user_id": *managerID})
		}
		return apperrors.MapError(err)
	}
	if !manager.IsStaff {
		return apperrors.NewValidationError("manager must be a staff user", map[string]any{"user_id": *managerID})
	}
	return nil
}

// Get fetches one department.
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// GetBySlug fetches one department by slug; pages address them this way.
func (s *DepartmentService) GetBySlug(ctx context.Context, slug string) (*domain.Department, error) {
	dept, err := s.departments.GetBySlug(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("department", map[string]any{"slug": slug})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// List returns departments ordered by title.
func (s *DepartmentService) List(ctx context.Context, activeOnly bool) ([]domain.Department, error) {
	items, err := s.departments.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ManagedBy lists the departments a user manages, ordered by title.
func (s *DepartmentService) ManagedBy(ctx context.Context, userID string) ([]domain.Department, error) {
	items, err := s.departments.ListManagedBy(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Delete removes a department and, by schema cascade, every ticket in it.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
