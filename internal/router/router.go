// Package router defines how HTTP routes are registered for the API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parkhaus/parking-ticket-service/internal/handler"
)

// RegisterRoutes registers the public API on the provided Echo
// instance.  There is no authentication: a parking ticket's barcode
// is the only credential a client ever presents.
func RegisterRoutes(e *echo.Echo, t *handler.TicketHandler, p *handler.PaymentHandler, f *handler.FreeSpacesHandler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Ticket lifecycle: admission, display, paid state, return.
	api.POST("/tickets", t.Create)
	api.GET("/tickets/:barcode", t.Show)
	api.GET("/tickets/:barcode/state", t.State)
	api.PUT("/tickets/:barcode", t.Update)

	// Payment ledger for a ticket.
	api.POST("/tickets/:barcode/payments", p.Create)

	// Facility occupancy.
	api.GET("/free-spaces", f.Index)

	// Unknown routes get the same error envelope as everything else.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
	})
}
