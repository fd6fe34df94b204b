package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// CreateBattle creates a new battle between two participants.
// POST /v1/battles
func (h *Handler) CreateBattle(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateBattleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	battle, err := h.service.CreateBattle(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, domain.CreateBattleResponse{ID: battle.ID})
}

// GetBattle returns the battle's current state: participants, round
// progress and every finalized verse.
// GET /v1/battles/:id
func (h *Handler) GetBattle(c echo.Context) error {
	snapshot, err := h.service.GetBattle(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, snapshot)
}
