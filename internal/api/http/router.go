package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	SLA      *handlers.SLAHandler
	Policies *handlers.PoliciesHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Post("/:id/first-response", cfg.Tickets.MarkFirstResponse)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Get("/:id/sla", cfg.SLA.GetStatus)

	slaGroup := app.Group("/sla")
	slaGroup.Get("/breaches", cfg.SLA.ListBreaches)
	slaGroup.Get("/statistics", cfg.SLA.GetStatistics)

	policies := slaGroup.Group("/policies")
	policies.Get("", cfg.Policies.ListPolicies)
	policies.Post("", cfg.Policies.CreatePolicy)
	policies.Get("/:id", cfg.Policies.GetPolicy)
	policies.Put("/:id", cfg.Policies.UpdatePolicy)
	policies.Delete("/:id", cfg.Policies.DeletePolicy)
}
