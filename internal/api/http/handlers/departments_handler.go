package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/api/dto"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// DepartmentsHandler exposes department (category) endpoints.
type DepartmentsHandler struct {
	departments *service.DepartmentService
	templates   *service.TemplateService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments *service.DepartmentService, templates *service.TemplateService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments, templates: templates}
}

// List handles GET /api/v1/categories.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	items, err := h.departments.List(c.Context(), c.QueryBool("active_only"))
	if err != nil {
		return err
	}
	result := make([]dto.DepartmentResponse, 0, len(items))
	for i := range items {
		result = append(result, departmentResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Get handles GET /api/v1/categories/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	dept, err := h.departments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// Create handles POST /api/v1/categories.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	req, err := parseDepartmentRequest(c)
	if err != nil {
		return err
	}
	dept, err := h.departments.Create(c.Context(), *req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// Update handles PUT /api/v1/categories/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	req, err := parseDepartmentRequest(c)
	if err != nil {
		return err
	}
	dept, err := h.departments.Update(c.Context(), c.Params("id"), *req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// Delete handles DELETE /api/v1/categories/:id. Deleting a category removes
// every ticket filed under it.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.departments.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Templates handles GET /api/v1/categories/:id/templates, the active
// knowledge-base entries for one department.
func (h *DepartmentsHandler) Templates(c *fiber.Ctx) error {
	if _, err := h.departments.Get(c.Context(), c.Params("id")); err != nil {
		return err
	}
	items, err := h.templates.ActiveByDepartment(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	result := make([]dto.TemplateResponse, 0, len(items))
	for i := range items {
		result = append(result, templateResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

func parseDepartmentRequest(c *fiber.Ctx) (*service.DepartmentInput, error) {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return &service.DepartmentInput{
		Title:               req.Title,
		EmailAddress:        req.EmailAddress,
		Description:         req.Description,
		ManagerID:           req.ManagerID,
		IsActive:            req.IsActive,
		AutoAssignToManager: req.AutoAssignToManager,
	}, nil
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:                  dept.ID,
		Title:               dept.Title,
		Slug:                dept.Slug,
		EmailAddress:        dept.EmailAddress,
		Description:         dept.Description,
		ManagerID:           dept.ManagerID,
		IsActive:            dept.IsActive,
		AutoAssignToManager: dept.AutoAssignToManager,
		Created:             dept.Created,
		Modified:            dept.Modified,
	}
}

// templateFilterFromQuery is shared with the templates handler.
func templateFilterFromQuery(c *fiber.Ctx) repository.TemplateFilter {
	filter := repository.TemplateFilter{ActiveOnly: c.QueryBool("active_only")}
	if raw := c.Query("department_id"); raw != "" {
		filter.DepartmentID = &raw
	}
	return filter
}
