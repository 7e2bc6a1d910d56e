package web

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/repository"
	"github.com/nxzen/ticketdesk/internal/service"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// PageHandler renders the server-side HTML views.
type PageHandler struct {
	tickets     *service.TicketService
	departments *service.DepartmentService
	templates   *service.TemplateService
	settings    *service.SettingsService
	users       repository.UserRepository
	authSvc     *auth.Service
	cookieName  string
}

// NewPageHandler constructs the page handler.
func NewPageHandler(
	tickets *service.TicketService,
	departments *service.DepartmentService,
	templates *service.TemplateService,
	settings *service.SettingsService,
	users repository.UserRepository,
	authSvc *auth.Service,
	cookieName string,
) *PageHandler {
	return &PageHandler{
		tickets:     tickets,
		departments: departments,
		templates:   templates,
		settings:    settings,
		users:       users,
		authSvc:     authSvc,
		cookieName:  cookieName,
	}
}

// ticketView decorates a ticket with the derived display fields templates
// need; templates stay logic-free.
type ticketView struct {
	*domain.Ticket
	PriorityName  string
	TypeName      string
	StatusText    string
	PriorityClass string
	StatusClass   string
	TypeClass     string
	Overdue       bool
	Deadline      time.Time
	HoursOpen     int
}

func newTicketView(t *domain.Ticket) ticketView {
	now := time.Now().UTC()
	return ticketView{
		Ticket:        t,
		PriorityName:  domain.PriorityLabel(t.Priority),
		TypeName:      t.TypeLabel(),
		StatusText:    t.StatusDisplay(now),
		PriorityClass: t.PriorityCSSClass(),
		StatusClass:   t.StatusCSSClass(),
		TypeClass:     t.TypeCSSClass(),
		Overdue:       t.IsOverdue(now),
		Deadline:      t.SLADeadline(),
		HoursOpen:     t.HoursSinceCreated(now),
	}
}

func ticketViews(items []domain.Ticket) []ticketView {
	views := make([]ticketView, 0, len(items))
	for i := range items {
		views = append(views, newTicketView(&items[i]))
	}
	return views
}

func (h *PageHandler) principal(c *fiber.Ctx) *auth.Principal {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal
}

func (h *PageHandler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if principal := h.principal(c); principal != nil {
		data["CurrentUser"] = principal.User
	}
	return c.Render(name, data, "layouts/main")
}

// LoginForm handles GET /login.
func (h *PageHandler) LoginForm(c *fiber.Ctx) error {
	if h.principal(c) != nil {
		return c.Redirect("/dashboard")
	}
	return c.Render("login", fiber.Map{})
}

// Login handles POST /login.
func (h *PageHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	_, token, exp, err := h.authSvc.Login(c.Context(), email, password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Error": "Invalid email or password.",
			"Email": email,
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/dashboard")
}

// Logout handles GET /logout.
func (h *PageHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.Redirect("/login")
}

// Dashboard handles GET /dashboard.
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	principal := h.principal(c)
	prefs, err := h.settings.Get(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	stats, err := h.tickets.Statistics(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title": "Dashboard",
		"Stats": stats,
	}

	if prefs.ShowOverdue {
		overdue, err := h.tickets.List(c.Context(), repository.TicketFilter{
			OverdueOnly: true,
			Limit:       prefs.PageSize,
		})
		if err != nil {
			return err
		}
		data["Overdue"] = ticketViews(overdue.Items)
	}
	if prefs.ShowPending {
		mine, err := h.tickets.List(c.Context(), repository.TicketFilter{
			Statuses:     domain.OpenStatuses,
			AssignedToID: &principal.User.ID,
			Limit:        prefs.PageSize,
		})
		if err != nil {
			return err
		}
		data["Mine"] = ticketViews(mine.Items)
	}

	upcoming, err := h.tickets.List(c.Context(), repository.TicketFilter{
		UpcomingOnly: true,
		Limit:        prefs.PageSize,
	})
	if err != nil {
		return err
	}
	data["Upcoming"] = ticketViews(upcoming.Items)

	if principal.User.IsStaff {
		managed, err := h.managedDepartments(c, principal.User.ID)
		if err != nil {
			return err
		}
		data["Managed"] = managed
	}

	return h.render(c, "dashboard", data)
}

// managedDeptView is one row of the manager's department summary.
type managedDeptView struct {
	Department domain.Department
	Open       int64
	Overdue    int64
}

func (h *PageHandler) managedDepartments(c *fiber.Ctx, userID string) ([]managedDeptView, error) {
	departments, err := h.departments.ManagedBy(c.Context(), userID)
	if err != nil {
		return nil, err
	}

	views := make([]managedDeptView, 0, len(departments))
	for i := range departments {
		dept := departments[i]
		open, err := h.tickets.List(c.Context(), repository.TicketFilter{
			DepartmentID: &dept.ID,
			Statuses:     domain.OpenStatuses,
			Limit:        1,
		})
		if err != nil {
			return nil, err
		}
		overdue, err := h.tickets.List(c.Context(), repository.TicketFilter{
			DepartmentID: &dept.ID,
			OverdueOnly:  true,
			Limit:        1,
		})
		if err != nil {
			return nil, err
		}
		views = append(views, managedDeptView{Department: dept, Open: open.Total, Overdue: overdue.Total})
	}
	return views, nil
}

// TicketList handles GET /tickets.
func (h *PageHandler) TicketList(c *fiber.Ctx) error {
	return h.ticketList(c, nil, "Tickets")
}

// TypedTicketList serves the /incidents, /problems and /changes lists.
func (h *PageHandler) TypedTicketList(t domain.TicketType, heading string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.ticketList(c, &t, heading)
	}
}

func (h *PageHandler) ticketList(c *fiber.Ctx, ticketType *domain.TicketType, heading string) error {
	principal := h.principal(c)
	prefs, err := h.settings.Get(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	filter := repository.TicketFilter{
		Search: c.Query("q"),
		Type:   ticketType,
		Limit:  prefs.PageSize,
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.TicketStatus(raw)
		if domain.ValidTicketStatus(status) {
			filter.Statuses = []domain.TicketStatus{status}
		}
	}
	if raw := c.Query("department"); raw != "" {
		filter.DepartmentID = &raw
	}
	if raw := c.Query("priority"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			filter.Priority = &p
		}
	}
	pageNum := c.QueryInt("page", 1)
	if pageNum < 1 {
		pageNum = 1
	}
	filter.Offset = (pageNum - 1) * filter.Limit

	page, err := h.tickets.List(c.Context(), filter)
	if err != nil {
		return err
	}
	departments, err := h.departments.List(c.Context(), false)
	if err != nil {
		return err
	}

	totalPages := int((page.Total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return h.render(c, "ticket_list", fiber.Map{
		"Title":       heading,
		"Tickets":     ticketViews(page.Items),
		"Total":       page.Total,
		"Page":        pageNum,
		"TotalPages":  totalPages,
		"HasPrev":     pageNum > 1,
		"HasNext":     pageNum < totalPages,
		"PrevPage":    pageNum - 1,
		"NextPage":    pageNum + 1,
		"Departments": departments,
		"Query":       c.Query("q"),
		"Status":      c.Query("status"),
	})
}

// TicketDetail handles GET /tickets/:id.
func (h *PageHandler) TicketDetail(c *fiber.Ctx) error {
	principal := h.principal(c)
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	updates, err := h.tickets.ListUpdates(c.Context(), ticket.ID, !principal.User.IsStaff)
	if err != nil {
		return err
	}
	dept, err := h.departments.Get(c.Context(), ticket.DepartmentID)
	if err != nil {
		return err
	}

	var staff []domain.User
	if principal.User.IsStaff {
		staff, err = h.users.ListStaff(c.Context())
		if err != nil {
			return apperrors.MapError(err)
		}
	}

	return h.render(c, "ticket_detail", fiber.Map{
		"Title":      ticket.DisplayID(),
		"Ticket":     newTicketView(ticket),
		"Updates":    updates,
		"Department": dept,
		"Staff":      staff,
		"Statuses": []domain.TicketStatus{
			domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusWaiting,
			domain.TicketStatusResolved, domain.TicketStatusClosed, domain.TicketStatusCancelled,
		},
	})
}

// TicketForm handles GET /tickets/new.
func (h *PageHandler) TicketForm(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context(), true)
	if err != nil {
		return err
	}
	return h.render(c, "ticket_form", fiber.Map{
		"Title":       "New Ticket",
		"Departments": departments,
	})
}

// TicketCreate handles POST /tickets.
func (h *PageHandler) TicketCreate(c *fiber.Ctx) error {
	principal := h.principal(c)

	priority, _ := strconv.Atoi(c.FormValue("priority", "3"))
	impact, _ := strconv.Atoi(c.FormValue("impact", "0"))
	urgency, _ := strconv.Atoi(c.FormValue("urgency", "0"))

	ticket, err := h.tickets.Create(c.Context(), &principal.User.ID, service.CreateTicketInput{
		Type:            domain.TicketType(c.FormValue("ticket_type", string(domain.TicketTypeIncident))),
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		DepartmentID:    c.FormValue("department_id"),
		Priority:        priority,
		Impact:          impact,
		Urgency:         urgency,
		ReporterName:    c.FormValue("reporter_name"),
		ReporterEmail:   c.FormValue("reporter_email"),
		ReporterPhone:   c.FormValue("reporter_phone"),
		AffectedService: c.FormValue("affected_service"),
	})
	if err != nil {
		departments, derr := h.departments.List(c.Context(), true)
		if derr != nil {
			return derr
		}
		return c.Status(fiber.StatusBadRequest).Render("ticket_form", fiber.Map{
			"Title":       "New Ticket",
			"Departments": departments,
			"Error":       apperrors.ToDomainError(err).Message,
		}, "layouts/main")
	}
	return c.Redirect("/tickets/" + ticket.ID)
}

// TicketEditForm handles GET /tickets/:id/edit.
func (h *PageHandler) TicketEditForm(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	departments, err := h.departments.List(c.Context(), true)
	if err != nil {
		return err
	}
	return h.render(c, "ticket_edit", fiber.Map{
		"Title":       "Edit " + ticket.DisplayID(),
		"Ticket":      newTicketView(ticket),
		"Departments": departments,
	})
}

// TicketEdit handles POST /tickets/:id/edit.
func (h *PageHandler) TicketEdit(c *fiber.Ctx) error {
	principal := h.principal(c)

	input := service.UpdateTicketInput{}
	if raw := c.FormValue("title"); raw != "" {
		input.Title = &raw
	}
	description := c.FormValue("description")
	input.Description = &description
	if raw := c.FormValue("department_id"); raw != "" {
		input.DepartmentID = &raw
	}
	if raw := c.FormValue("priority"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			input.Priority = &p
		}
	}
	if raw := c.FormValue("status"); raw != "" {
		status := domain.TicketStatus(raw)
		input.Status = &status
	}
	if raw := c.FormValue("affected_service"); raw != "" {
		input.AffectedService = &raw
	}
	resolution := c.FormValue("resolution")
	input.Resolution = &resolution

	if _, err := h.tickets.Update(c.Context(), &principal.User.ID, c.Params("id"), input); err != nil {
		ticket, gerr := h.tickets.Get(c.Context(), c.Params("id"))
		if gerr != nil {
			return gerr
		}
		departments, derr := h.departments.List(c.Context(), true)
		if derr != nil {
			return derr
		}
		return c.Status(fiber.StatusBadRequest).Render("ticket_edit", fiber.Map{
			"Title":       "Edit " + ticket.DisplayID(),
			"Ticket":      newTicketView(ticket),
			"Departments": departments,
			"Error":       apperrors.ToDomainError(err).Message,
		}, "layouts/main")
	}
	return c.Redirect("/tickets/" + c.Params("id"))
}

// TicketAddUpdate handles POST /tickets/:id/updates from the detail page.
func (h *PageHandler) TicketAddUpdate(c *fiber.Ctx) error {
	principal := h.principal(c)

	input := service.AddUpdateInput{
		Title:    c.FormValue("title"),
		Comment:  c.FormValue("comment"),
		IsPublic: c.FormValue("is_public") != "",
	}
	if raw := c.FormValue("new_status"); raw != "" {
		status := domain.TicketStatus(raw)
		input.NewStatus = &status
	}
	if raw := c.FormValue("time_spent_minutes"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			spent := time.Duration(minutes) * time.Minute
			input.TimeSpent = &spent
		}
	}

	if _, err := h.tickets.AddUpdate(c.Context(), &principal.User.ID, c.Params("id"), input); err != nil {
		return err
	}
	return c.Redirect("/tickets/" + c.Params("id"))
}

// TicketAssign handles POST /tickets/:id/assign from the detail page.
func (h *PageHandler) TicketAssign(c *fiber.Ctx) error {
	principal := h.principal(c)
	assignee := c.FormValue("assignee_id")
	if assignee == "" {
		return apperrors.NewValidationError("assignee required", nil)
	}
	if _, err := h.tickets.Assign(c.Context(), &principal.User.ID, c.Params("id"), assignee); err != nil {
		return err
	}
	return c.Redirect("/tickets/" + c.Params("id"))
}

// CategoryList handles GET /categories.
func (h *PageHandler) CategoryList(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context(), false)
	if err != nil {
		return err
	}
	return h.render(c, "categories", fiber.Map{
		"Title":       "Service Categories",
		"Departments": departments,
	})
}

func (h *PageHandler) categoryFormData(c *fiber.Ctx, title string, dept *domain.Department) (fiber.Map, error) {
	staff, err := h.users.ListStaff(c.Context())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	data := fiber.Map{
		"Title":     title,
		"Staff":     staff,
		"ManagerID": "",
	}
	if dept != nil {
		data["Department"] = dept
		if dept.ManagerID != nil {
			data["ManagerID"] = *dept.ManagerID
		}
	}
	return data, nil
}

func categoryInput(c *fiber.Ctx) service.DepartmentInput {
	input := service.DepartmentInput{
		Title:               c.FormValue("title"),
		EmailAddress:        c.FormValue("email_address"),
		Description:         c.FormValue("description"),
		IsActive:            c.FormValue("is_active") != "",
		AutoAssignToManager: c.FormValue("auto_assign_to_manager") != "",
	}
	if raw := c.FormValue("manager_id"); raw != "" {
		input.ManagerID = &raw
	}
	return input
}

// CategoryForm handles GET /categories/new.
func (h *PageHandler) CategoryForm(c *fiber.Ctx) error {
	data, err := h.categoryFormData(c, "New Category", nil)
	if err != nil {
		return err
	}
	return h.render(c, "category_form", data)
}

// CategoryCreate handles POST /categories.
func (h *PageHandler) CategoryCreate(c *fiber.Ctx) error {
	if _, err := h.departments.Create(c.Context(), categoryInput(c)); err != nil {
		data, derr := h.categoryFormData(c, "New Category", nil)
		if derr != nil {
			return derr
		}
		data["Error"] = apperrors.ToDomainError(err).Message
		return c.Status(fiber.StatusBadRequest).Render("category_form", data, "layouts/main")
	}
	return c.Redirect("/categories")
}

// CategoryEditForm handles GET /categories/:id/edit.
func (h *PageHandler) CategoryEditForm(c *fiber.Ctx) error {
	dept, err := h.departments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	data, err := h.categoryFormData(c, "Edit "+dept.Title, dept)
	if err != nil {
		return err
	}
	return h.render(c, "category_form", data)
}

// CategoryEdit handles POST /categories/:id/edit.
func (h *PageHandler) CategoryEdit(c *fiber.Ctx) error {
	if _, err := h.departments.Update(c.Context(), c.Params("id"), categoryInput(c)); err != nil {
		dept, gerr := h.departments.Get(c.Context(), c.Params("id"))
		if gerr != nil {
			return gerr
		}
		data, derr := h.categoryFormData(c, "Edit "+dept.Title, dept)
		if derr != nil {
			return derr
		}
		data["Error"] = apperrors.ToDomainError(err).Message
		return c.Status(fiber.StatusBadRequest).Render("category_form", data, "layouts/main")
	}
	return c.Redirect("/categories")
}

// KnowledgeList handles GET /knowledge.
func (h *PageHandler) KnowledgeList(c *fiber.Ctx) error {
	filter := repository.TemplateFilter{ActiveOnly: true}
	if raw := c.Query("department"); raw != "" {
		filter.DepartmentID = &raw
	}
	items, err := h.templates.List(c.Context(), filter)
	if err != nil {
		return err
	}
	departments, err := h.departments.List(c.Context(), true)
	if err != nil {
		return err
	}
	return h.render(c, "knowledge", fiber.Map{
		"Title":       "Knowledge Base",
		"Templates":   items,
		"Departments": departments,
	})
}

// KnowledgeForm handles GET /knowledge/new.
func (h *PageHandler) KnowledgeForm(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context(), true)
	if err != nil {
		return err
	}
	return h.render(c, "knowledge_form", fiber.Map{
		"Title":       "New Article",
		"Departments": departments,
	})
}

// KnowledgeCreate handles POST /knowledge. Checklist items arrive one per
// line; a leading "*" marks the item required.
func (h *PageHandler) KnowledgeCreate(c *fiber.Ctx) error {
	estimatedDays, _ := strconv.Atoi(c.FormValue("estimated_days", "0"))

	input := service.TemplateInput{
		Name:              c.FormValue("name"),
		DepartmentID:      c.FormValue("department_id"),
		PositionTypes:     c.FormValue("position_types"),
		ChecklistItems:    parseChecklist(c.FormValue("checklist")),
		RequiredEquipment: c.FormValue("required_equipment"),
		EstimatedDays:     estimatedDays,
		IsActive:          c.FormValue("is_active") != "",
	}
	if _, err := h.templates.Create(c.Context(), input); err != nil {
		departments, derr := h.departments.List(c.Context(), true)
		if derr != nil {
			return derr
		}
		return c.Status(fiber.StatusBadRequest).Render("knowledge_form", fiber.Map{
			"Title":       "New Article",
			"Departments": departments,
			"Error":       apperrors.ToDomainError(err).Message,
		}, "layouts/main")
	}
	return c.Redirect("/knowledge")
}

func parseChecklist(raw string) []domain.ChecklistItem {
	var items []domain.ChecklistItem
	for _, line := range strings.Split(raw, "\n") {
		task := strings.TrimSpace(line)
		if task == "" {
			continue
		}
		required := strings.HasPrefix(task, "*")
		if required {
			task = strings.TrimSpace(strings.TrimPrefix(task, "*"))
		}
		if task == "" {
			continue
		}
		items = append(items, domain.ChecklistItem{Task: task, Required: required})
	}
	return items
}

// SettingsForm handles GET /settings.
func (h *PageHandler) SettingsForm(c *fiber.Ctx) error {
	principal := h.principal(c)
	prefs, err := h.settings.Get(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return h.render(c, "settings", fiber.Map{
		"Title":           "Settings",
		"Settings":        prefs,
		"PageSizeChoices": domain.PageSizeChoices,
	})
}

// SettingsSave handles POST /settings.
func (h *PageHandler) SettingsSave(c *fiber.Ctx) error {
	principal := h.principal(c)
	pageSize, _ := strconv.Atoi(c.FormValue("page_size", strconv.Itoa(domain.DefaultPageSize)))

	prefs, err := h.settings.Update(c.Context(), principal.User.ID, service.SettingsInput{
		EmailOnAssign: c.FormValue("email_on_assign") != "",
		EmailOnUpdate: c.FormValue("email_on_update") != "",
		ShowPending:   c.FormValue("show_pending") != "",
		ShowOverdue:   c.FormValue("show_overdue") != "",
		PageSize:      pageSize,
	})
	if err != nil {
		return err
	}
	return h.render(c, "settings", fiber.Map{
		"Title":           "Settings",
		"Settings":        prefs,
		"PageSizeChoices": domain.PageSizeChoices,
		"Saved":           true,
	})
}

// redirectAlias maps a legacy page path onto its modern equivalent.
func redirectAlias(target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, pair := range [][2]string{
			{"/requests", "/tickets"},
			{"/departments", "/categories"},
		} {
			if strings.HasPrefix(path, pair[0]) {
				return c.Redirect(pair[1]+strings.TrimPrefix(path, pair[0]), fiber.StatusMovedPermanently)
			}
		}
		return c.Redirect(target, fiber.StatusMovedPermanently)
	}
}
