package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/api/dto"
	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// TicketsHandler exposes ticket lifecycle endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	settings *service.SettingsService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, settings *service.SettingsService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, settings: settings}
}

// Create handles POST /api/v1/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" || req.Title == "" {
		return apperrors.NewValidationError("department_id and title required", nil)
	}
	if req.Priority == 0 {
		req.Priority = domain.PriorityMedium
	}

	ticket, err := h.service.Create(c.Context(), actorID(c), service.CreateTicketInput{
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		DepartmentID:    req.DepartmentID,
		Priority:        req.Priority,
		Impact:          req.Impact,
		Urgency:         req.Urgency,
		ReporterName:    req.ReporterName,
		ReporterEmail:   req.ReporterEmail,
		ReporterPhone:   req.ReporterPhone,
		AffectedService: req.AffectedService,
		ParentProblemID: req.ParentProblemID,
		RelatedIDs:      req.RelatedIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// List handles GET /api/v1/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.Context(), h.parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketListResponse(page)})
}

// My handles GET /api/v1/tickets/my, the caller's assigned queue.
func (h *TicketsHandler) My(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := h.parseTicketFilter(c)
	filter.AssignedToID = &principal.User.ID
	page, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketListResponse(page)})
}

// Overdue handles GET /api/v1/tickets/overdue.
func (h *TicketsHandler) Overdue(c *fiber.Ctx) error {
	filter := h.parseTicketFilter(c)
	filter.OverdueOnly = true
	page, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketListResponse(page)})
}

// Upcoming handles GET /api/v1/tickets/upcoming, open tickets whose SLA
// deadline falls within the next day, nearest first.
func (h *TicketsHandler) Upcoming(c *fiber.Ctx) error {
	filter := h.parseTicketFilter(c)
	filter.UpcomingOnly = true
	page, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketListResponse(page)})
}

// Statistics handles GET /api/v1/tickets/statistics.
func (h *TicketsHandler) Statistics(c *fiber.Ctx) error {
	var userID string
	if principal, ok := auth.PrincipalFromContext(c); ok {
		userID = principal.User.ID
	}
	stats, err := h.service.Statistics(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:             stats.Total,
		ByStatus:          stats.ByStatus,
		ByType:            stats.ByType,
		Overdue:           stats.Overdue,
		ResolvedLast7Days: stats.ResolvedLast7Days,
		MyAssigned:        stats.MyAssigned,
	}})
}

// Get handles GET /api/v1/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// GetSLA handles GET /api/v1/tickets/:id/sla.
func (h *TicketsHandler) GetSLA(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return c.JSON(fiber.Map{"data": dto.SLAResponse{
		TicketID:    ticket.ID,
		Priority:    ticket.Priority,
		SLAHours:    int(domain.SLAFor(ticket.Priority).Hours()),
		Deadline:    ticket.SLADeadline(),
		IsOverdue:   ticket.IsOverdue(now),
		HoursOpen:   ticket.HoursSinceCreated(now),
		StatusLabel: ticket.StatusDisplay(now),
	}})
}

// Update handles PATCH /api/v1/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.Context(), actorID(c), c.Params("id"), service.UpdateTicketInput{
		Title:           req.Title,
		Description:     req.Description,
		DepartmentID:    req.DepartmentID,
		Priority:        req.Priority,
		Impact:          req.Impact,
		Urgency:         req.Urgency,
		ReporterName:    req.ReporterName,
		ReporterEmail:   req.ReporterEmail,
		ReporterPhone:   req.ReporterPhone,
		AffectedService: req.AffectedService,
		Status:          req.Status,
		Resolution:      req.Resolution,
		ParentProblemID: req.ParentProblemID,
		ClearParent:     req.ClearParent,
		RelatedIDs:      req.RelatedIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Delete handles DELETE /api/v1/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign handles POST /api/v1/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	ticket, err := h.service.Assign(c.Context(), actorID(c), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Close handles POST /api/v1/tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Close(c.Context(), actorID(c), c.Params("id"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Reopen handles POST /api/v1/tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	var req dto.ReopenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Reopen(c.Context(), actorID(c), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func actorID(c *fiber.Ctx) *string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return &principal.User.ID
	}
	return nil
}

func (h *TicketsHandler) parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Search: c.Query("q"),
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(s))
			if domain.ValidTicketStatus(status) {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if c.QueryBool("open_only") {
		filter.Statuses = append([]domain.TicketStatus{}, domain.OpenStatuses...)
	}
	if raw := c.Query("ticket_type"); raw != "" {
		t := domain.TicketType(raw)
		if domain.ValidTicketType(t) {
			filter.Type = &t
		}
	}
	if raw := c.Query("department_id"); raw != "" {
		filter.DepartmentID = &raw
	}
	if raw := c.Query("priority"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			filter.Priority = &p
		}
	}
	if raw := c.Query("assigned_to"); raw != "" {
		filter.AssignedToID = &raw
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	filter.Limit = h.pageSize(c)
	filter.Offset = c.QueryInt("offset", 0)
	return filter
}

// pageSize resolves the page size: an explicit limit/page_size parameter
// wins, otherwise the caller's stored preference applies.
func (h *TicketsHandler) pageSize(c *fiber.Ctx) int {
	if raw := c.Query("limit", c.Query("page_size")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && domain.ValidPageSize(limit) {
			return limit
		}
		return domain.DefaultPageSize
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		if prefs, err := h.settings.Get(c.Context(), principal.User.ID); err == nil {
			return prefs.PageSize
		}
	}
	return domain.DefaultPageSize
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	now := time.Now().UTC()
	return dto.TicketSummary{
		ID:              ticket.ID,
		Reference:       ticket.Reference,
		DisplayID:       ticket.DisplayID(),
		Type:            ticket.Type,
		Title:           ticket.Title,
		DepartmentID:    ticket.DepartmentID,
		Priority:        ticket.Priority,
		PriorityLabel:   domain.PriorityLabel(ticket.Priority),
		Status:          ticket.Status,
		StatusDisplay:   ticket.StatusDisplay(now),
		AssignedToID:    ticket.AssignedToID,
		AffectedService: ticket.AffectedService,
		IsOverdue:       ticket.IsOverdue(now),
		SLADeadline:     ticket.SLADeadline(),
		Created:         ticket.Created,
		Modified:        ticket.Modified,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetail {
	return dto.TicketDetail{
		TicketSummary:   ticketSummary(ticket),
		Description:     ticket.Description,
		Impact:          ticket.Impact,
		Urgency:         ticket.Urgency,
		ReporterName:    ticket.ReporterName,
		ReporterEmail:   ticket.ReporterEmail,
		ReporterPhone:   ticket.ReporterPhone,
		Resolution:      ticket.Resolution,
		ParentProblemID: ticket.ParentProblemID,
		RelatedIDs:      ticket.RelatedIDs,
		HoursOpen:       ticket.HoursSinceCreated(time.Now().UTC()),
		ResolvedDate:    ticket.ResolvedDate,
		ClosedDate:      ticket.ClosedDate,
	}
}

func ticketListResponse(page *service.TicketPage) dto.TicketListResponse {
	items := make([]dto.TicketSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketSummary(&page.Items[i]))
	}
	return dto.TicketListResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
