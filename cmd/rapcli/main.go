// Package main provides a terminal client for the battle service: it
// creates a battle, consumes the NDJSON stream, and renders verses as
// they are generated. With -watch it observes a running battle over
// WebSocket instead.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// streamLine covers every NDJSON line shape the server emits. Absent
// fields decode to zero values, which is how the shapes are told apart.
type streamLine struct {
	Rapper         string `json:"rapper"`
	Verse          string `json:"verse"`
	Complete       bool   `json:"complete"`
	Round          int    `json:"round"`
	Error          string `json:"error"`
	BattleComplete bool   `json:"battle_complete"`
}

// createRequest mirrors the create endpoint's body.
type createRequest struct {
	ParticipantA string `json:"participant_a"`
	ParticipantB string `json:"participant_b"`
	Rounds       int    `json:"rounds"`
}

// createResponse mirrors the create endpoint's response.
type createResponse struct {
	ID string `json:"id"`
}

// Client talks to the battle service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// CreateBattle creates a battle and returns its ID.
func (c *Client) CreateBattle(participantA, participantB string, rounds int) (string, error) {
	body, err := json.Marshal(createRequest{
		ParticipantA: participantA,
		ParticipantB: participantB,
		Rounds:       rounds,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.http.Post(c.baseURL+"/v1/battles", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create battle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("create battle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return created.ID, nil
}

// StreamBattle consumes the battle's NDJSON stream and renders each line
// until the terminal marker arrives.
func (c *Client) StreamBattle(battleID string) error {
	resp, err := c.http.Get(c.baseURL + "/v1/battles/" + battleID + "/stream")
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("open stream: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	r := newRenderer()
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if done := r.renderLine([]byte(line)); done {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}

// WatchBattle observes a battle over WebSocket without driving it.
func (c *Client) WatchBattle(battleID string) error {
	// http -> ws, https -> wss
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/battles/" + battleID + "/watch"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Watching battle %s (Ctrl+C to stop)...\n", battleID)

	r := newRenderer()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		r.renderLine(data)
	}
}

// renderer turns cumulative verse buffers into typewriter output: each
// line only prints the suffix that was not printed before.
type renderer struct {
	rapper  string
	round   int
	printed int
}

func newRenderer() *renderer {
	return &renderer{round: -1}
}

// renderLine renders one wire line and reports whether the stream is done.
func (r *renderer) renderLine(data []byte) bool {
	var line streamLine
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		log.Printf("skipping unreadable line: %v", err)
		return false
	}

	switch {
	case line.Error != "":
		fmt.Printf("\n\nbattle error: %s\n", line.Error)
		return true
	case line.BattleComplete:
		fmt.Printf("\n\n=== battle complete ===\n")
		return true
	}

	if line.Rapper != r.rapper || line.Round != r.round {
		fmt.Printf("\n\n[Round %d] %s:\n", line.Round, line.Rapper)
		r.rapper = line.Rapper
		r.round = line.Round
		r.printed = 0
	}

	// The buffer is cumulative, so the already-printed prefix is stable.
	if len(line.Verse) > r.printed {
		fmt.Print(line.Verse[r.printed:])
		r.printed = len(line.Verse)
	}
	if line.Complete {
		fmt.Println()
		// Force a fresh header even if the same rapper ever repeats
		r.rapper = ""
		r.round = -1
	}
	return false
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "battle service base URL")
	participantA := flag.String("a", "", "first participant")
	participantB := flag.String("b", "", "second participant")
	rounds := flag.Int("rounds", 3, "number of rounds (1-10)")
	watch := flag.String("watch", "", "watch an existing battle by ID instead of creating one")
	flag.Parse()

	log.SetFlags(log.Ltime)

	client := NewClient(*addr)

	if *watch != "" {
		if err := client.WatchBattle(*watch); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
		return
	}

	if *participantA == "" || *participantB == "" {
		fmt.Println("Usage: rapcli -a \"Rapper One\" -b \"Rapper Two\" [-rounds N]")
		fmt.Println("       rapcli -watch <battle_id>")
		flag.PrintDefaults()
		return
	}

	id, err := client.CreateBattle(*participantA, *participantB, *rounds)
	if err != nil {
		log.Fatalf("Create failed: %v", err)
	}

	fmt.Printf("Battle %s: %s vs %s, %d rounds\n", id, *participantA, *participantB, *rounds)

	start := time.Now()
	if err := client.StreamBattle(id); err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
	fmt.Printf("\nFinished in %s\n", time.Since(start).Round(time.Second))
}
