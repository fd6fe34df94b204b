// Package http assembles the battle service's HTTP server.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oksmith/ai-rap-battle/internal/hub"
	"github.com/oksmith/ai-rap-battle/internal/service"
	v1 "github.com/oksmith/ai-rap-battle/internal/transport/http/v1"
)

// NewServer creates and configures the battle HTTP server. It serves the
// battle API, the NDJSON stream, and the observer WebSocket endpoint.
func NewServer(svc *service.Service, observers *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, observers)
	v1Handler.RegisterRoutes(e)

	return e
}
