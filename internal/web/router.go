package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/auth"
	"github.com/nxzen/ticketdesk/internal/domain"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// RegisterRoutes wires the HTML page routes. Legacy page paths under
// /requests and /departments redirect permanently to their modern names.
func RegisterRoutes(app *fiber.App, pages *PageHandler, middleware *auth.AuthMiddleware) {
	app.Get("/login", middleware.Optional, pages.LoginForm)
	app.Post("/login", pages.Login)
	app.Get("/logout", pages.Logout)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	protected := app.Group("", requireCookieAuth(middleware))
	protected.Get("/dashboard", pages.Dashboard)

	protected.Get("/tickets", pages.TicketList)
	protected.Get("/tickets/new", pages.TicketForm)
	protected.Get("/tickets/create", pages.TicketForm)
	protected.Post("/tickets", pages.TicketCreate)
	protected.Get("/tickets/:id", pages.TicketDetail)
	protected.Get("/tickets/:id/edit", auth.RequireStaff(), pages.TicketEditForm)
	protected.Post("/tickets/:id/edit", auth.RequireStaff(), pages.TicketEdit)
	protected.Post("/tickets/:id/updates", pages.TicketAddUpdate)
	protected.Post("/tickets/:id/assign", auth.RequireStaff(), pages.TicketAssign)

	protected.Get("/incidents", pages.TypedTicketList(domain.TicketTypeIncident, "Incidents"))
	protected.Get("/problems", pages.TypedTicketList(domain.TicketTypeProblem, "Problems"))
	protected.Get("/changes", pages.TypedTicketList(domain.TicketTypeChange, "Change Requests"))

	protected.Get("/categories", pages.CategoryList)
	protected.Get("/categories/new", auth.RequireStaff(), pages.CategoryForm)
	protected.Post("/categories", auth.RequireStaff(), pages.CategoryCreate)
	protected.Get("/categories/:id/edit", auth.RequireStaff(), pages.CategoryEditForm)
	protected.Post("/categories/:id/edit", auth.RequireStaff(), pages.CategoryEdit)

	protected.Get("/knowledge", pages.KnowledgeList)
	protected.Get("/knowledge/new", auth.RequireStaff(), pages.KnowledgeForm)
	protected.Post("/knowledge", auth.RequireStaff(), pages.KnowledgeCreate)
	protected.Get("/knowledge-base", pages.KnowledgeList)
	protected.Get("/templates", pages.KnowledgeList)

	protected.Get("/settings", pages.SettingsForm)
	protected.Post("/settings", pages.SettingsSave)

	app.Get("/requests", redirectAlias("/tickets"))
	app.Get("/requests/*", redirectAlias("/tickets"))
	app.Get("/departments", redirectAlias("/categories"))
	app.Get("/departments/*", redirectAlias("/categories"))
}

// requireCookieAuth authenticates via the middleware but sends browsers to
// the login page instead of returning a JSON 401. Errors from downstream
// page handlers pass through untouched.
func requireCookieAuth(middleware *auth.AuthMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := middleware.Handle(c)
		if err != nil && apperrors.ToDomainError(err).HTTPStatus == fiber.StatusUnauthorized {
			return c.Redirect("/login")
		}
		return err
	}
}
