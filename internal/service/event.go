package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// recordEvent appends a transcript event. Transcript failures are logged
// and never interrupt a battle.
func (s *Service) recordEvent(ctx context.Context, battleID string, eventType domain.BattleEventType, payload interface{}) {
	if s.store == nil {
		return
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("WARN: failed to marshal %s payload for %s: %v", eventType, battleID, err)
		return
	}

	event := &domain.BattleEvent{
		EventID:  "evt_" + uuid.New().String()[:8],
		BattleID: battleID,
		Ts:       time.Now().UnixMilli(),
		Type:     eventType,
		Payload:  payloadBytes,
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		log.Printf("WARN: failed to record %s event for %s: %v", eventType, battleID, err)
	}
}
