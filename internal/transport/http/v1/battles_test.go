package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/oksmith/ai-rap-battle/internal/adapter/llm"
	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/domain"
	"github.com/oksmith/ai-rap-battle/internal/hub"
	"github.com/oksmith/ai-rap-battle/internal/registry"
	"github.com/oksmith/ai-rap-battle/internal/repository"
	"github.com/oksmith/ai-rap-battle/internal/service"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()
	cfg := &config.Config{GenerationTimeout: 5 * time.Second}
	observers := hub.NewHub()
	svc := service.New(registry.New(), nil, llm.NewMockGenerator(), observers, cfg)
	return NewHandler(svc, observers), svc
}

func newTranscriptHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{GenerationTimeout: 5 * time.Second}
	observers := hub.NewHub()
	svc := service.New(registry.New(), store, llm.NewMockGenerator(), observers, cfg)
	return NewHandler(svc, observers), svc
}

func getContext(e *echo.Echo, id string, tail string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/battles/"+id+tail, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/battles/:id" + tail)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestCreateBattle(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	body := `{"participant_a":"MC Alpha","participant_b":"MC Beta","rounds":3}`
	req := httptest.NewRequest(http.MethodPost, "/v1/battles", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateBattle(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.CreateBattleResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.ID, "battle_")
}

func TestCreateBattleValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing first participant", `{"participant_b":"Anyone","rounds":3}`},
		{"missing second participant", `{"participant_a":"Anyone","rounds":3}`},
		{"identical participants", `{"participant_a":"A","participant_b":"A","rounds":3}`},
		{"zero rounds", `{"participant_a":"A","participant_b":"B","rounds":0}`},
		{"missing rounds", `{"participant_a":"A","participant_b":"B"}`},
		{"too many rounds", `{"participant_a":"A","participant_b":"B","rounds":11}`},
		{"malformed body", `{not json`},
	}

	e := echo.New()
	h, _ := newTestHandler(t)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/battles", bytes.NewBufferString(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.CreateBattle(c)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGetBattle(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)

	battle, err := svc.CreateBattle(context.Background(), domain.CreateBattleRequest{
		ParticipantA: "MC Alpha", ParticipantB: "MC Beta", Rounds: 3,
	})
	assert.NoError(t, err)

	c, rec := getContext(e, battle.ID, "")
	assert.NoError(t, h.GetBattle(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap domain.BattleSnapshot
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "MC Alpha", snap.ParticipantA)
	assert.Equal(t, "MC Beta", snap.ParticipantB)
	assert.Equal(t, 0, snap.CurrentRound)
	assert.Equal(t, 3, snap.TotalRounds)
	assert.False(t, snap.Complete)
	// Fresh battles serialize an empty list, not null
	assert.NotNil(t, snap.Verses)
	assert.Len(t, snap.Verses, 0)
}

func TestGetBattleNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := getContext(e, "battle_missing", "")
	assert.NoError(t, h.GetBattle(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestGetBattleEvents(t *testing.T) {
	e := echo.New()
	h, svc := newTranscriptHandler(t)

	battle, err := svc.CreateBattle(context.Background(), domain.CreateBattleRequest{
		ParticipantA: "A", ParticipantB: "B", Rounds: 1,
	})
	assert.NoError(t, err)

	c, rec := getContext(e, battle.ID, "/events")
	assert.NoError(t, h.GetBattleEvents(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []domain.BattleEvent `json:"events"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 1)
	assert.Equal(t, domain.BattleEventCreated, resp.Events[0].Type)
}

func TestGetBattleEventsNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTranscriptHandler(t)

	c, rec := getContext(e, "battle_missing", "/events")
	assert.NoError(t, h.GetBattleEvents(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
