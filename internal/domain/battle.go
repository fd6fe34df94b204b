// Package domain defines the core domain models for the battle service.
package domain

import (
	"fmt"
	"sync"
	"time"
)

// Round bounds for a battle, inclusive.
const (
	MinRounds = 1
	MaxRounds = 10
)

// Verse is one participant's finalized text for one round. Immutable once
// appended to a battle.
type Verse struct {
	Rapper  string `json:"rapper"`
	Content string `json:"content"`
	Round   int    `json:"round"`
}

// Turn carries everything needed to generate one participant's verse for
// one round. PriorVerses holds every verse finalized so far, in order, and
// Index is the zero-based position the generated verse will occupy.
type Turn struct {
	Rapper      string
	Opponent    string
	Round       int
	TotalRounds int
	Index       int
	PriorVerses []Verse
}

// Battle is the authoritative record of one battle. Identity fields are
// fixed at creation. Mutable state is guarded so concurrent snapshot reads
// never observe a partially appended verse.
type Battle struct {
	ID           string
	ParticipantA string
	ParticipantB string
	TotalRounds  int
	CreatedAt    time.Time

	mu           sync.RWMutex
	verses       []Verse
	currentRound int
	complete     bool
	streaming    bool
}

// NewBattle creates a battle with no verses and the round counter at zero.
// Input validation is the registry's job.
func NewBattle(id, participantA, participantB string, totalRounds int) *Battle {
	return &Battle{
		ID:           id,
		ParticipantA: participantA,
		ParticipantB: participantB,
		TotalRounds:  totalRounds,
		CreatedAt:    time.Now(),
	}
}

// NextTurn returns the turn that should be generated next, derived from the
// verses finalized so far. ok is false once both participants have produced
// their final-round verse.
func (b *Battle) NextTurn() (Turn, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := len(b.verses)
	if b.complete || idx >= 2*b.TotalRounds {
		return Turn{}, false
	}

	turn := Turn{
		Rapper:      b.ParticipantA,
		Opponent:    b.ParticipantB,
		Round:       idx/2 + 1,
		TotalRounds: b.TotalRounds,
		Index:       idx,
		PriorVerses: append([]Verse(nil), b.verses...),
	}
	if idx%2 == 1 {
		turn.Rapper, turn.Opponent = b.ParticipantB, b.ParticipantA
	}
	return turn, true
}

// AppendVerse finalizes one verse. Verses must arrive in strict alternating
// order starting with participant A; the round counter advances after the
// second participant of each round, and the battle flips to complete when
// the final round closes. Completion is monotonic.
func (b *Battle) AppendVerse(v Verse) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := len(b.verses)
	if idx >= 2*b.TotalRounds {
		return fmt.Errorf("battle %s already has all %d verses", b.ID, 2*b.TotalRounds)
	}

	wantRapper := b.ParticipantA
	if idx%2 == 1 {
		wantRapper = b.ParticipantB
	}
	wantRound := idx/2 + 1
	if v.Rapper != wantRapper || v.Round != wantRound {
		return fmt.Errorf("verse out of order: got %s round %d, want %s round %d",
			v.Rapper, v.Round, wantRapper, wantRound)
	}

	b.verses = append(b.verses, v)
	if idx%2 == 1 {
		b.currentRound++
	}
	if b.currentRound == b.TotalRounds {
		b.complete = true
	}
	return nil
}

// Verses returns a copy of the finalized verses in order.
func (b *Battle) Verses() []Verse {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Verse(nil), b.verses...)
}

// CurrentRound returns the number of fully completed rounds.
func (b *Battle) CurrentRound() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.currentRound
}

// Complete reports whether both participants have produced their
// final-round verse.
func (b *Battle) Complete() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.complete
}

// TryAcquireStream claims the battle's single writer slot. It returns false
// while another stream is actively generating for this battle.
func (b *Battle) TryAcquireStream() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streaming {
		return false
	}
	b.streaming = true
	return true
}

// ReleaseStream frees the writer slot claimed by TryAcquireStream.
func (b *Battle) ReleaseStream() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streaming = false
}

// Snapshot returns a consistent read-only view of the battle.
func (b *Battle) Snapshot() BattleSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	verses := make([]Verse, len(b.verses))
	copy(verses, b.verses)

	return BattleSnapshot{
		ID:           b.ID,
		ParticipantA: b.ParticipantA,
		ParticipantB: b.ParticipantB,
		CurrentRound: b.currentRound,
		TotalRounds:  b.TotalRounds,
		Verses:       verses,
		Complete:     b.complete,
	}
}
