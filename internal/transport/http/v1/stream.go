package v1

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// StreamBattle drives the battle and streams newline-delimited JSON as
// verses are generated. Verses already finalized by an earlier stream are
// replayed first; the stream ends with a battle_complete line.
// GET /v1/battles/:id/stream
func (h *Handler) StreamBattle(c echo.Context) error {
	ctx := c.Request().Context()
	battleID := c.Param("id")

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	// Headers go out with the first event, so lookup and busy errors can
	// still map onto their real statuses.
	headersSent := false
	sink := func(ev domain.StreamEvent) error {
		data, err := ev.MarshalWire()
		if err != nil {
			return err
		}

		if !headersSent {
			c.Response().Header().Set("Content-Type", "application/x-ndjson")
			c.Response().Header().Set("Cache-Control", "no-cache")
			c.Response().WriteHeader(http.StatusOK)
			headersSent = true
		}

		if _, err := fmt.Fprintf(c.Response().Writer, "%s\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := h.service.StreamBattle(ctx, battleID, sink); err != nil {
		if !headersSent {
			return writeError(c, err)
		}
		// The response is already underway; the client sees the break.
		log.Printf("WARN: stream for battle %s ended early: %v", battleID, err)
	}
	return nil
}
