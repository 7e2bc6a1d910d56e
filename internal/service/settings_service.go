package service

import (
	"context"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// SettingsInput carries the user-editable preference fields.
type SettingsInput struct {
	EmailOnAssign bool
	EmailOnUpdate bool
	ShowPending   bool
	ShowOverdue   bool
	PageSize      int
}

// SettingsService manages per-user preferences.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService builds the service.
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's settings, creating the default row on first read.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.OnboardingSettings, error) {
	settings, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}

// Update replaces the user's settings. The page size must be one of the
// allowed choices.
func (s *SettingsService) Update(ctx context.Context, userID string, input SettingsInput) (*domain.OnboardingSettings, error) {
	if !domain.ValidPageSize(input.PageSize) {
		return nil, apperrors.NewValidationError("invalid page size", map[string]any{
			"page_size": input.PageSize,
			"choices":   domain.PageSizeChoices,
		})
	}

	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.EmailOnAssign = input.EmailOnAssign
	settings.EmailOnUpdate = input.EmailOnUpdate
	settings.ShowPending = input.ShowPending
	settings.ShowOverdue = input.ShowOverdue
	settings.PageSize = input.PageSize

	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}
