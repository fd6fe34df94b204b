// Package v1 provides the public HTTP API for battles.
package v1

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/oksmith/ai-rap-battle/internal/domain"
	"github.com/oksmith/ai-rap-battle/internal/hub"
	"github.com/oksmith/ai-rap-battle/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service   *service.Service
	observers *hub.Hub
	upgrader  websocket.Upgrader
}

// NewHandler creates a new handler. observers may be nil, in which case
// the watch endpoint is not registered.
func NewHandler(service *service.Service, observers *hub.Hub) *Handler {
	return &Handler{
		service:   service,
		observers: observers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Battles are public; origins are not restricted
				return true
			},
		},
	}
}

// RegisterRoutes registers battle routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Battle API
	e.POST("/v1/battles", h.CreateBattle)
	e.GET("/v1/battles/:id", h.GetBattle)
	e.GET("/v1/battles/:id/stream", h.StreamBattle)
	e.GET("/v1/battles/:id/events", h.GetBattleEvents)
	if h.observers != nil {
		e.GET("/v1/battles/:id/watch", h.WatchBattle)
	}

	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// writeError maps domain sentinel errors onto their HTTP statuses.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBattleBusy):
		status = http.StatusConflict
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
