package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/api/dto"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/service"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// TemplatesHandler exposes knowledge-base template endpoints.
type TemplatesHandler struct {
	templates *service.TemplateService
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(templates *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

// List handles GET /api/v1/templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	items, err := h.templates.List(c.Context(), templateFilterFromQuery(c))
	if err != nil {
		return err
	}
	result := make([]dto.TemplateResponse, 0, len(items))
	for i := range items {
		result = append(result, templateResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Get handles GET /api/v1/templates/:id.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	tpl, err := h.templates.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": templateResponse(tpl)})
}

// Create handles POST /api/v1/templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	input, err := parseTemplateRequest(c)
	if err != nil {
		return err
	}
	tpl, err := h.templates.Create(c.Context(), *input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": templateResponse(tpl)})
}

// Update handles PUT /api/v1/templates/:id.
func (h *TemplatesHandler) Update(c *fiber.Ctx) error {
	input, err := parseTemplateRequest(c)
	if err != nil {
		return err
	}
	tpl, err := h.templates.Update(c.Context(), c.Params("id"), *input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": templateResponse(tpl)})
}

// Delete handles DELETE /api/v1/templates/:id.
func (h *TemplatesHandler) Delete(c *fiber.Ctx) error {
	if err := h.templates.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTemplateRequest(c *fiber.Ctx) (*service.TemplateInput, error) {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return &service.TemplateInput{
		Name:              req.Name,
		DepartmentID:      req.DepartmentID,
		PositionTypes:     req.PositionTypes,
		ChecklistItems:    req.ChecklistItems,
		RequiredEquipment: req.RequiredEquipment,
		EstimatedDays:     req.EstimatedDays,
		IsActive:          req.IsActive,
	}, nil
}

func templateResponse(tpl *domain.OnboardingTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:                tpl.ID,
		Name:              tpl.Name,
		DepartmentID:      tpl.DepartmentID,
		PositionTypes:     tpl.PositionTypes,
		ChecklistItems:    tpl.ChecklistItems,
		RequiredEquipment: tpl.RequiredEquipment,
		EstimatedDays:     tpl.EstimatedDays,
		IsActive:          tpl.IsActive,
		Created:           tpl.Created,
		Modified:          tpl.Modified,
	}
}
