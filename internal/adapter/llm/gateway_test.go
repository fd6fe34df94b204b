package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/domain"
)

func gatewayConfig(url string) *config.Config {
	return &config.Config{
		GatewayURL:     url,
		GatewayAPIKey:  "test-key",
		LLMModel:       "gpt-4o-mini",
		LLMTemperature: 0.8,
	}
}

func testTurn() domain.Turn {
	return domain.Turn{Rapper: "A", Opponent: "B", Round: 1, TotalRounds: 2}
}

func TestGatewayStreamVerse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}

		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if !req.Stream || req.Model != "gpt-4o-mini" || len(req.Messages) == 0 {
			t.Errorf("unexpected request payload: %+v", req)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Yo, \"}}]}\n\n")
		fmt.Fprint(w, "data: {this is not json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"check the mic\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := NewGatewayGenerator(gatewayConfig(srv.URL))

	var fragments []string
	verse, err := g.StreamVerse(context.Background(), testTurn(), func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamVerse failed: %v", err)
	}

	if verse != "Yo, check the mic" {
		t.Fatalf("unexpected verse: %q", verse)
	}
	// The malformed chunk is skipped, not fatal
	if len(fragments) != 2 || fragments[0] != "Yo, " || fragments[1] != "check the mic" {
		t.Fatalf("unexpected fragments: %q", fragments)
	}
}

func TestGatewayStreamVerseUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"message":"upstream down","type":"upstream_error"}}`)
	}))
	defer srv.Close()

	g := NewGatewayGenerator(gatewayConfig(srv.URL))

	_, err := g.StreamVerse(context.Background(), testTurn(), func(string) error { return nil })
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGatewayStreamVerseEmptyStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := NewGatewayGenerator(gatewayConfig(srv.URL))

	_, err := g.StreamVerse(context.Background(), testTurn(), func(string) error { return nil })
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed for empty stream, got %v", err)
	}
}

func TestGatewayStreamVerseCallbackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"second\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := NewGatewayGenerator(gatewayConfig(srv.URL))

	errStop := errors.New("sink gone")
	calls := 0
	_, err := g.StreamVerse(context.Background(), testTurn(), func(string) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("callback error must propagate, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("stream should stop at the first callback error, got %d calls", calls)
	}
}
