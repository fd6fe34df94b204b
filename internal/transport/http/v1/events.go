package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// GetBattleEvents returns the battle's persisted transcript.
// GET /v1/battles/:id/events
func (h *Handler) GetBattleEvents(c echo.Context) error {
	battleID := c.Param("id")
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}

	ctx := c.Request().Context()

	events, err := h.service.GetBattleEvents(ctx, battleID, afterTs, limit)
	if err != nil {
		return writeError(c, err)
	}
	if events == nil {
		events = []domain.BattleEvent{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
