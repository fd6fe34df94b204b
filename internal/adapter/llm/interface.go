// Package llm provides the verse generation port and its provider-backed
// implementations.
package llm

import (
	"context"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// FragmentCallback is called for each text fragment as it streams in.
// Returning an error stops the generation.
type FragmentCallback func(fragment string) error

// VerseGenerator defines the interface for turn-by-turn verse generation.
type VerseGenerator interface {
	// StreamVerse generates one verse for the turn, invoking the callback
	// per fragment as it arrives, and returns the complete verse text once
	// the provider signals completion. Provider failures and empty results
	// are reported wrapped in domain.ErrGenerationFailed; context
	// cancellation and deadline errors pass through unwrapped.
	StreamVerse(ctx context.Context, turn domain.Turn, onFragment FragmentCallback) (string, error)
}
