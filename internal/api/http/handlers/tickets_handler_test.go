package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/events"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
)

// captureTicketRepo records the filter each List call receives.
type captureTicketRepo struct {
	mu         sync.Mutex
	lastFilter repository.TicketFilter
}

func (r *captureTicketRepo) Create(_ context.Context, _ *domain.Ticket) error { return nil }
func (r *captureTicketRepo) Update(_ context.Context, _ *domain.Ticket) error { return nil }
func (r *captureTicketRepo) Delete(_ context.Context, _ string) error         { return nil }
func (r *captureTicketRepo) GetByID(_ context.Context, _ string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (r *captureTicketRepo) GetByReference(_ context.Context, _ string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (r *captureTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	return nil, nil
}
func (r *captureTicketRepo) Count(_ context.Context, _ repository.TicketFilter) (int64, error) {
	return 0, nil
}
func (r *captureTicketRepo) TouchModified(_ context.Context, _ string, _ time.Time) error {
	return nil
}
func (r *captureTicketRepo) ReplaceRelated(_ context.Context, _ string, _ []string) error {
	return nil
}
func (r *captureTicketRepo) ListRelatedIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
func (r *captureTicketRepo) Stats(_ context.Context, _ string) (*domain.TicketStats, error) {
	return &domain.TicketStats{}, nil
}

func (r *captureTicketRepo) filter() repository.TicketFilter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFilter
}

type noopUpdateRepo struct{}

func (noopUpdateRepo) Create(_ context.Context, _ *domain.TicketUpdate) error { return nil }
func (noopUpdateRepo) GetByID(_ context.Context, _ string) (*domain.TicketUpdate, error) {
	return nil, pgx.ErrNoRows
}
func (noopUpdateRepo) Update(_ context.Context, _ *domain.TicketUpdate) error { return nil }
func (noopUpdateRepo) Delete(_ context.Context, _ string) error               { return nil }
func (noopUpdateRepo) List(_ context.Context, _ repository.UpdateFilter) ([]domain.TicketUpdate, error) {
	return nil, nil
}

type noopAttachmentRepo struct{}

func (noopAttachmentRepo) Create(_ context.Context, _ *domain.Attachment) error { return nil }
func (noopAttachmentRepo) GetByID(_ context.Context, _ string) (*domain.Attachment, error) {
	return nil, pgx.ErrNoRows
}
func (noopAttachmentRepo) ListByUpdate(_ context.Context, _ string) ([]domain.Attachment, error) {
	return nil, nil
}

type noopDepartmentRepo struct{}

func (noopDepartmentRepo) Create(_ context.Context, _ *domain.Department) error { return nil }
func (noopDepartmentRepo) Update(_ context.Context, _ *domain.Department) error { return nil }
func (noopDepartmentRepo) Delete(_ context.Context, _ string) error             { return nil }
func (noopDepartmentRepo) GetByID(_ context.Context, _ string) (*domain.Department, error) {
	return nil, pgx.ErrNoRows
}
func (noopDepartmentRepo) GetBySlug(_ context.Context, _ string) (*domain.Department, error) {
	return nil, pgx.ErrNoRows
}
func (noopDepartmentRepo) List(_ context.Context, _ bool) ([]domain.Department, error) {
	return nil, nil
}
func (noopDepartmentRepo) ListManagedBy(_ context.Context, _ string) ([]domain.Department, error) {
	return nil, nil
}

type singleUserRepo struct {
	user domain.User
}

func (r *singleUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }
func (r *singleUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if id != r.user.ID {
		return nil, pgx.ErrNoRows
	}
	clone := r.user
	return &clone, nil
}
func (r *singleUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *singleUserRepo) ListStaff(_ context.Context) ([]domain.User, error) { return nil, nil }

type fixedSettingsRepo struct {
	pageSize int
}

func (r *fixedSettingsRepo) Create(_ context.Context, _ *domain.OnboardingSettings) error {
	return nil
}
func (r *fixedSettingsRepo) Update(_ context.Context, _ *domain.OnboardingSettings) error {
	return nil
}
func (r *fixedSettingsRepo) GetByUser(ctx context.Context, userID string) (*domain.OnboardingSettings, error) {
	return r.GetOrCreate(ctx, userID)
}
func (r *fixedSettingsRepo) GetOrCreate(_ context.Context, userID string) (*domain.OnboardingSettings, error) {
	settings := domain.NewDefaultSettings(userID)
	settings.PageSize = r.pageSize
	return settings, nil
}

func newTicketListApp(t *testing.T, storedPageSize int) (*fiber.App, *captureTicketRepo, string) {
	t.Helper()

	userRepo := &singleUserRepo{user: domain.User{ID: "user-1", Name: "Carol", Email: "carol@example.com", IsActive: true}}
	ticketRepo := &captureTicketRepo{}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UpdateRepo:     noopUpdateRepo{},
		AttachmentRepo: noopAttachmentRepo{},
		DepartmentRepo: noopDepartmentRepo{},
		UserRepo:       userRepo,
	}, events.NewInMemoryDispatcher(zap.NewNop()))
	settingsService := service.NewSettingsService(&fixedSettingsRepo{pageSize: storedPageSize})

	tokens := auth.NewTokenManager("test-secret", 60)
	middleware := auth.NewAuthMiddleware(tokens, userRepo, "")
	token, _, err := tokens.GenerateToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := NewTicketsHandler(ticketService, settingsService)
	app := fiber.New()
	app.Get("/api/v1/tickets", middleware.Handle, handler.List)
	return app, ticketRepo, token
}

func TestTicketsHandler_List_PageSizeDefaults(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		stored    int
		wantLimit int
	}{
		{"stored preference applies", "", 50, 50},
		{"explicit limit wins", "?limit=10", 50, 10},
		{"page_size alias wins", "?page_size=100", 50, 100},
		{"invalid limit falls back", "?limit=33", 50, domain.DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, ticketRepo, token := newTicketListApp(t, tt.stored)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets"+tt.query, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := ticketRepo.filter().Limit; got != tt.wantLimit {
				t.Errorf("limit = %d, want %d", got, tt.wantLimit)
			}
		})
	}
}
