package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/api/dto"
	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// UsersHandler exposes auth, account, and preference endpoints.
type UsersHandler struct {
	auth     *auth.Service
	settings *service.SettingsService
	users    repository.UserRepository
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *auth.Service, settings *service.SettingsService, users repository.UserRepository) *UsersHandler {
	return &UsersHandler{auth: authService, settings: settings, users: users}
}

// Register handles POST /api/v1/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password, req.IsStaff)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"user": userResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}

// Login handles POST /api/v1/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": userResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}

// Me handles GET /api/v1/auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": userResponse(principal.User)})
}

// ListStaff handles GET /api/v1/users/staff, the assignable operator list.
func (h *UsersHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := h.users.ListStaff(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.UserResponse, 0, len(staff))
	for i := range staff {
		items = append(items, userResponse(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSettings handles GET /api/v1/settings.
func (h *UsersHandler) GetSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	settings, err := h.settings.Get(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settingsResponse(settings)})
}

// UpdateSettings handles PUT /api/v1/settings.
func (h *UsersHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Update(c.Context(), principal.User.ID, service.SettingsInput{
		EmailOnAssign: req.EmailOnAssign,
		EmailOnUpdate: req.EmailOnUpdate,
		ShowPending:   req.ShowPending,
		ShowOverdue:   req.ShowOverdue,
		PageSize:      req.PageSize,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settingsResponse(settings)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsStaff: user.IsStaff,
	}
}

func settingsResponse(settings *domain.OnboardingSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		UserID:        settings.UserID,
		EmailOnAssign: settings.EmailOnAssign,
		EmailOnUpdate: settings.EmailOnUpdate,
		ShowPending:   settings.ShowPending,
		ShowOverdue:   settings.ShowOverdue,
		PageSize:      settings.PageSize,
	}
}
