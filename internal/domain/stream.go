package domain

import "encoding/json"

// StreamEventType identifies one kind of orchestrator emission.
type StreamEventType string

const (
	StreamEventTurnAnnounce   StreamEventType = "turn_announce"
	StreamEventFragment       StreamEventType = "fragment"
	StreamEventVerseComplete  StreamEventType = "verse_complete"
	StreamEventBattleComplete StreamEventType = "battle_complete"
	StreamEventError          StreamEventType = "error"
)

// StreamEvent is one orchestrator emission for an open battle stream.
// Fragment events carry the cumulative verse buffer, not a delta, so a
// stateless consumer can always render the latest full text.
type StreamEvent struct {
	Type   StreamEventType
	Rapper string
	Verse  string
	Round  int
	Err    string

	// Seq is the zero-based index of the verse this event concerns,
	// or -1 for battle-level events. Observers use it to suppress
	// duplicates across the replay/live boundary.
	Seq int
}

// VerseLine is the wire shape for announce, fragment and finalized-verse
// stream lines. An announce is a fragment line with an empty verse.
type VerseLine struct {
	Rapper   string `json:"rapper"`
	Verse    string `json:"verse"`
	Complete bool   `json:"complete"`
	Round    int    `json:"round"`
}

// ErrorLine is the terminal wire shape for a failed stream.
type ErrorLine struct {
	Error string `json:"error"`
}

// DoneLine is the explicit terminal marker for a successfully completed
// battle; the stream closes right after it.
type DoneLine struct {
	BattleComplete bool `json:"battle_complete"`
}

// MarshalWire serializes the event into its newline-delimited JSON line
// shape, without the trailing newline.
func (ev StreamEvent) MarshalWire() ([]byte, error) {
	switch ev.Type {
	case StreamEventError:
		return json.Marshal(ErrorLine{Error: ev.Err})
	case StreamEventBattleComplete:
		return json.Marshal(DoneLine{BattleComplete: true})
	default:
		return json.Marshal(VerseLine{
			Rapper:   ev.Rapper,
			Verse:    ev.Verse,
			Complete: ev.Type == StreamEventVerseComplete,
			Round:    ev.Round,
		})
	}
}
