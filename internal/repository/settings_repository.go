package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// SettingsRepository manages per-user notification settings.
type SettingsRepository interface {
	Create(ctx context.Context, settings *domain.OnboardingSettings) error
	Update(ctx context.Context, settings *domain.OnboardingSettings) error
	GetByUser(ctx context.Context, userID string) (*domain.OnboardingSettings, error)
	GetOrCreate(ctx context.Context, userID string) (*domain.OnboardingSettings, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Create(ctx context.Context, settings *domain.OnboardingSettings) error {
	const query = `
        INSERT INTO onboarding_settings (user_id, email_on_assign, email_on_update, show_pending, show_overdue, page_size)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		settings.UserID,
		settings.EmailOnAssign,
		settings.EmailOnUpdate,
		settings.ShowPending,
		settings.ShowOverdue,
		settings.PageSize,
	)
	return err
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.OnboardingSettings) error {
	const query = `
        UPDATE onboarding_settings SET email_on_assign=$1, email_on_update=$2,
            show_pending=$3, show_overdue=$4, page_size=$5
        WHERE user_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		settings.EmailOnAssign,
		settings.EmailOnUpdate,
		settings.ShowPending,
		settings.ShowOverdue,
		settings.PageSize,
		settings.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *settingsRepository) GetByUser(ctx context.Context, userID string) (*domain.OnboardingSettings, error) {
	const query = `
        SELECT user_id, email_on_assign, email_on_update, show_pending, show_overdue, page_size
        FROM onboarding_settings WHERE user_id=$1`
	var settings domain.OnboardingSettings
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.EmailOnAssign,
		&settings.EmailOnUpdate,
		&settings.ShowPending,
		&settings.ShowOverdue,
		&settings.PageSize,
	); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetOrCreate covers accounts provisioned before settings auto-creation.
func (r *settingsRepository) GetOrCreate(ctx context.Context, userID string) (*domain.OnboardingSettings, error) {
	settings, err := r.GetByUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	defaults := domain.NewDefaultSettings(userID)
	if err := r.Create(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
