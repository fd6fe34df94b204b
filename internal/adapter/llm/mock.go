package llm

import (
	"context"
	"fmt"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// MockGenerator is a deterministic VerseGenerator for tests and
// credential-free local runs.
type MockGenerator struct{}

// NewMockGenerator creates a new mock verse generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

var _ VerseGenerator = (*MockGenerator)(nil)

// StreamVerse streams a canned verse in small chunks.
func (m *MockGenerator) StreamVerse(ctx context.Context, turn domain.Turn, onFragment FragmentCallback) (string, error) {
	verse := m.mockVerse(turn)

	for _, chunk := range splitIntoChunks(verse, 10) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if err := onFragment(chunk); err != nil {
			return "", err
		}
	}

	return verse, nil
}

// mockVerse builds a verse that names the rapper, opponent and round, so
// consumers see plausibly distinct output per turn.
func (m *MockGenerator) mockVerse(turn domain.Turn) string {
	if len(turn.PriorVerses) == 0 {
		return fmt.Sprintf("Yo, I'm %s, first up on the mic,\nround %d of %d, %s can't match my hype.",
			turn.Rapper, turn.Round, turn.TotalRounds, turn.Opponent)
	}
	return fmt.Sprintf("%s here, round %d, answering back,\n%s talked big but their rhymes fell flat.",
		turn.Rapper, turn.Round, turn.Opponent)
}

// splitIntoChunks splits a string into chunks of approximately the given size.
func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}

	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}
