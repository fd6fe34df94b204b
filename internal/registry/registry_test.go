package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

func TestCreateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name         string
		participantA string
		participantB string
		rounds       int
	}{
		{"empty first participant", "", "Anyone", 3},
		{"whitespace first participant", "   ", "Anyone", 3},
		{"empty second participant", "Anyone", "", 3},
		{"identical participants", "A", "A", 3},
		{"identical after trimming", " A ", "A", 3},
		{"zero rounds", "A", "B", 0},
		{"negative rounds", "A", "B", -1},
		{"too many rounds", "A", "B", 11},
	}

	r := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Create(tc.participantA, tc.participantB, tc.rounds)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestCreateStartsBattleFresh(t *testing.T) {
	r := New()

	battle, err := r.Create("MC Alpha", "MC Beta", 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(battle.ID, "battle_") {
		t.Fatalf("unexpected battle id: %s", battle.ID)
	}
	if battle.CurrentRound() != 0 || battle.Complete() || len(battle.Verses()) != 0 {
		t.Fatalf("new battle should have no progress: round=%d complete=%v verses=%d",
			battle.CurrentRound(), battle.Complete(), len(battle.Verses()))
	}
}

func TestCreateTrimsParticipantNames(t *testing.T) {
	r := New()

	battle, err := r.Create("  Ada Lovelace  ", "Charles Babbage", 2)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if battle.ParticipantA != "Ada Lovelace" {
		t.Fatalf("expected trimmed name, got %q", battle.ParticipantA)
	}
}

func TestCreateComparesNamesCaseSensitively(t *testing.T) {
	r := New()

	// Different casing means different participants
	if _, err := r.Create("MC Flow", "mc flow", 2); err != nil {
		t.Fatalf("case-distinct names should be accepted: %v", err)
	}
}

func TestCreateAcceptsRoundBounds(t *testing.T) {
	r := New()

	if _, err := r.Create("A", "B", domain.MinRounds); err != nil {
		t.Fatalf("min rounds should be accepted: %v", err)
	}
	if _, err := r.Create("A", "B", domain.MaxRounds); err != nil {
		t.Fatalf("max rounds should be accepted: %v", err)
	}
}

func TestGetReturnsSameBattle(t *testing.T) {
	r := New()

	created, err := r.Create("A", "B", 2)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := r.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != created {
		t.Fatal("Get must return the same battle handle")
	}
}

func TestGetUnknownBattle(t *testing.T) {
	r := New()

	_, err := r.Get("battle_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
