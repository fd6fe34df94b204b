package domain

import "encoding/json"

// BattleEventType identifies a persisted transcript record.
type BattleEventType string

const (
	BattleEventCreated          BattleEventType = "battle_created"
	BattleEventTurnStarted      BattleEventType = "turn_started"
	BattleEventVerseFinalized   BattleEventType = "verse_finalized"
	BattleEventGenerationFailed BattleEventType = "generation_failed"
	BattleEventCompleted        BattleEventType = "battle_completed"
)

// BattleEvent is one persisted transcript record for a battle. The
// transcript is write-through only; live state never rehydrates from it.
type BattleEvent struct {
	EventID  string          `json:"event_id"`
	BattleID string          `json:"battle_id"`
	Ts       int64           `json:"ts"` // Unix milliseconds
	Type     BattleEventType `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// BattleCreatedPayload is the payload for a battle_created event.
type BattleCreatedPayload struct {
	ParticipantA string `json:"participant_a"`
	ParticipantB string `json:"participant_b"`
	TotalRounds  int    `json:"total_rounds"`
}

// TurnStartedPayload is the payload for a turn_started event.
type TurnStartedPayload struct {
	Rapper string `json:"rapper"`
	Round  int    `json:"round"`
}

// VerseFinalizedPayload is the payload for a verse_finalized event.
type VerseFinalizedPayload struct {
	Rapper  string `json:"rapper"`
	Round   int    `json:"round"`
	Content string `json:"content"`
}

// GenerationFailedPayload is the payload for a generation_failed event.
type GenerationFailedPayload struct {
	Rapper string `json:"rapper"`
	Round  int    `json:"round"`
	Reason string `json:"reason"`
}

// BattleCompletedPayload is the payload for a battle_completed event.
type BattleCompletedPayload struct {
	Rounds int `json:"rounds"`
	Verses int `json:"verses"`
}
