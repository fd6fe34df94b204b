package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// GatewayGenerator generates verses through an OpenAI-compatible
// chat-completions gateway (LiteLLM and friends), consuming the SSE stream
// directly. Malformed chunks are logged and skipped, never fatal.
type GatewayGenerator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

var _ VerseGenerator = (*GatewayGenerator)(nil)

// NewGatewayGenerator creates a generator that talks to the configured
// gateway URL. Call deadlines come from the caller's context.
func NewGatewayGenerator(cfg *config.Config) *GatewayGenerator {
	return &GatewayGenerator{
		baseURL:     strings.TrimSuffix(cfg.GatewayURL, "/"),
		apiKey:      cfg.GatewayAPIKey,
		model:       cfg.LLMModel,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
		httpClient:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type streamChoice struct {
	Delta        chatMessage `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type gatewayErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StreamVerse sends a streaming chat completion and assembles the verse
// from the delta chunks.
func (g *GatewayGenerator) StreamVerse(ctx context.Context, turn domain.Turn, onFragment FragmentCallback) (string, error) {
	reqPayload := chatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Stream:      true,
	}
	for _, pm := range buildPrompt(turn) {
		reqPayload.Messages = append(reqPayload.Messages, chatMessage{Role: pm.role, Content: pm.content})
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrGenerationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp gatewayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return "", fmt.Errorf("%w: gateway error [%d]: %s", domain.ErrGenerationFailed, resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: gateway error [%d]: %s", domain.ErrGenerationFailed, resp.StatusCode, string(respBody))
	}

	verse, err := g.consumeStream(ctx, resp.Body, onFragment)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(verse) == "" {
		return "", fmt.Errorf("%w: gateway returned no content", domain.ErrGenerationFailed)
	}
	return verse, nil
}

// consumeStream reads SSE lines until the [DONE] marker or EOF, forwarding
// each content delta to the callback.
func (g *GatewayGenerator) consumeStream(ctx context.Context, body io.Reader, onFragment FragmentCallback) (string, error) {
	reader := bufio.NewReader(body)
	var buf strings.Builder

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: read stream: %v", domain.ErrGenerationFailed, err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Printf("WARN: skipping malformed gateway chunk: %v", err)
			continue
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			buf.WriteString(choice.Delta.Content)
			if err := onFragment(choice.Delta.Content); err != nil {
				return "", err
			}
		}
	}

	return buf.String(), nil
}
