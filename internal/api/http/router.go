package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nxzen/ticketdesk/internal/api/http/handlers"
	"github.com/nxzen/ticketdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Updates        *handlers.UpdatesHandler
	Departments    *handlers.DepartmentsHandler
	Templates      *handlers.TemplatesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Collections are exposed under both their
// modern names and the names older clients still call: departments for
// categories, requests for tickets, progress-updates for updates.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/auth/register", cfg.Users.Register)
	api.Post("/auth/login", cfg.Users.Login)
	api.Get("/auth/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	authed := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	staff := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaff())

	registerTicketRoutes(authed, staff, "/tickets", cfg)
	registerTicketRoutes(authed, staff, "/requests", cfg)

	registerDepartmentRoutes(authed, staff, "/categories", cfg)
	registerDepartmentRoutes(authed, staff, "/departments", cfg)

	registerUpdateRoutes(authed, staff, "/ticket-updates", cfg)
	registerUpdateRoutes(authed, staff, "/progress-updates", cfg)

	authed.Get("/templates", cfg.Templates.List)
	authed.Get("/templates/:id", cfg.Templates.Get)
	staff.Post("/templates", cfg.Templates.Create)
	staff.Put("/templates/:id", cfg.Templates.Update)
	staff.Delete("/templates/:id", cfg.Templates.Delete)

	authed.Get("/attachments/:id", cfg.Updates.Download)

	authed.Get("/settings", cfg.Users.GetSettings)
	authed.Put("/settings", cfg.Users.UpdateSettings)

	staff.Get("/users/staff", cfg.Users.ListStaff)
}

func registerTicketRoutes(authed, staff fiber.Router, prefix string, cfg RouteConfig) {
	authed.Get(prefix, cfg.Tickets.List)
	authed.Post(prefix, cfg.Tickets.Create)

	// Fixed paths register before the :id wildcard.
	authed.Get(prefix+"/my", cfg.Tickets.My)
	authed.Get(prefix+"/overdue", cfg.Tickets.Overdue)
	authed.Get(prefix+"/upcoming", cfg.Tickets.Upcoming)
	authed.Get(prefix+"/statistics", cfg.Tickets.Statistics)

	authed.Get(prefix+"/:id", cfg.Tickets.Get)
	authed.Get(prefix+"/:id/sla", cfg.Tickets.GetSLA)
	staff.Patch(prefix+"/:id", cfg.Tickets.Update)
	staff.Delete(prefix+"/:id", cfg.Tickets.Delete)
	staff.Post(prefix+"/:id/assign", cfg.Tickets.Assign)
	staff.Post(prefix+"/:id/close", cfg.Tickets.Close)
	staff.Post(prefix+"/:id/reopen", cfg.Tickets.Reopen)

	authed.Get(prefix+"/:id/updates", cfg.Updates.List)
	authed.Post(prefix+"/:id/updates", cfg.Updates.Create)
	authed.Get(prefix+"/:id/progress-updates", cfg.Updates.List)
	authed.Post(prefix+"/:id/progress-updates", cfg.Updates.Create)
}

func registerUpdateRoutes(authed, staff fiber.Router, prefix string, cfg RouteConfig) {
	authed.Get(prefix, cfg.Updates.ListAll)
	authed.Post(prefix, cfg.Updates.CreateTopLevel)
	authed.Get(prefix+"/:id", cfg.Updates.Get)
	staff.Patch(prefix+"/:id", cfg.Updates.Edit)
	staff.Delete(prefix+"/:id", cfg.Updates.Delete)
}

func registerDepartmentRoutes(authed, staff fiber.Router, prefix string, cfg RouteConfig) {
	authed.Get(prefix, cfg.Departments.List)
	authed.Get(prefix+"/:id", cfg.Departments.Get)
	authed.Get(prefix+"/:id/templates", cfg.Departments.Templates)
	staff.Post(prefix, cfg.Departments.Create)
	staff.Put(prefix+"/:id", cfg.Departments.Update)
	staff.Delete(prefix+"/:id", cfg.Departments.Delete)
}
