package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// OpenAIGenerator generates verses through an OpenAI chat model.
type OpenAIGenerator struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

var _ VerseGenerator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator backed by the configured OpenAI
// model. The API key falls back to the OPENAI_API_KEY environment variable
// when unset in config.
func NewOpenAIGenerator(cfg *config.Config) (*OpenAIGenerator, error) {
	opts := []openai.Option{openai.WithModel(cfg.LLMModel)}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, openai.WithToken(cfg.OpenAIAPIKey))
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}

	return &OpenAIGenerator{
		model:       model,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
	}, nil
}

// StreamVerse generates one verse, forwarding streamed chunks to the
// callback as they arrive.
func (g *OpenAIGenerator) StreamVerse(ctx context.Context, turn domain.Turn, onFragment FragmentCallback) (string, error) {
	messages := make([]llms.MessageContent, 0, len(turn.PriorVerses)+2)
	for _, pm := range buildPrompt(turn) {
		messages = append(messages, llms.TextParts(chatMessageType(pm.role), pm.content))
	}

	var buf strings.Builder
	opts := []llms.CallOption{
		llms.WithTemperature(g.temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			buf.Write(chunk)
			return onFragment(string(chunk))
		}),
	}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	verse := buf.String()
	if verse == "" && resp != nil && len(resp.Choices) > 0 {
		verse = resp.Choices[0].Content
	}
	if strings.TrimSpace(verse) == "" {
		return "", fmt.Errorf("%w: provider returned no content", domain.ErrGenerationFailed)
	}
	return verse, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
