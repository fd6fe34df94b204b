package llm

import (
	"fmt"
	"log"
	"strings"

	"github.com/oksmith/ai-rap-battle/internal/config"
)

// Mode values for LLM_MODE.
const (
	ModeOpenAI  = "openai"
	ModeGateway = "gateway"
	ModeMock    = "mock"
)

// NewVerseGenerator creates a verse generator for the configured mode.
// Unset mode defaults to the OpenAI client.
func NewVerseGenerator(cfg *config.Config) (VerseGenerator, error) {
	switch strings.ToLower(cfg.LLMMode) {
	case ModeMock:
		log.Println("LLM_MODE=mock detected, using mock verse generator")
		return NewMockGenerator(), nil
	case ModeGateway:
		return NewGatewayGenerator(cfg), nil
	case ModeOpenAI, "":
		return NewOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM_MODE %q", cfg.LLMMode)
	}
}
