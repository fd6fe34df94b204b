// Package registry owns the process-wide mapping from battle id to battle
// state. A single Registry is constructed at startup and passed by handle;
// there is no package-level instance.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// Registry stores live battles keyed by id.
type Registry struct {
	mu      sync.RWMutex
	battles map[string]*domain.Battle
}

// New creates an empty battle registry.
func New() *Registry {
	return &Registry{
		battles: make(map[string]*domain.Battle),
	}
}

// Create validates the participants and round count, assigns a fresh id and
// registers a new battle. Names are trimmed before validation and stored
// trimmed; they must be non-empty and distinct (case-sensitive). The round
// count must lie within [MinRounds, MaxRounds]; out-of-range values are
// rejected, never clamped.
func (r *Registry) Create(participantA, participantB string, rounds int) (*domain.Battle, error) {
	participantA = strings.TrimSpace(participantA)
	participantB = strings.TrimSpace(participantB)

	if participantA == "" {
		return nil, fmt.Errorf("%w: participant_a is required", domain.ErrInvalidRequest)
	}
	if participantB == "" {
		return nil, fmt.Errorf("%w: participant_b is required", domain.ErrInvalidRequest)
	}
	if participantA == participantB {
		return nil, fmt.Errorf("%w: participants must be distinct", domain.ErrInvalidRequest)
	}
	if rounds < domain.MinRounds || rounds > domain.MaxRounds {
		return nil, fmt.Errorf("%w: rounds must be between %d and %d",
			domain.ErrInvalidRequest, domain.MinRounds, domain.MaxRounds)
	}

	battle := domain.NewBattle(newBattleID(), participantA, participantB, rounds)

	r.mu.Lock()
	r.battles[battle.ID] = battle
	r.mu.Unlock()

	return battle, nil
}

// Get looks up a battle by id.
func (r *Registry) Get(id string) (*domain.Battle, error) {
	r.mu.RLock()
	battle := r.battles[id]
	r.mu.RUnlock()
	if battle == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return battle, nil
}

func newBattleID() string {
	return "battle_" + uuid.New().String()[:8]
}
