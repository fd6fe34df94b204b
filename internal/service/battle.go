package service

import (
	"context"
	"log"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// CreateBattle validates the request and registers a new battle. The
// transcript row is written best-effort; a store failure never blocks
// creation.
func (s *Service) CreateBattle(ctx context.Context, req domain.CreateBattleRequest) (*domain.Battle, error) {
	battle, err := s.registry.Create(req.ParticipantA, req.ParticipantB, req.Rounds)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.CreateBattle(ctx, battle); err != nil {
			log.Printf("WARN: failed to persist battle %s: %v", battle.ID, err)
		}
	}
	s.recordEvent(ctx, battle.ID, domain.BattleEventCreated, domain.BattleCreatedPayload{
		ParticipantA: battle.ParticipantA,
		ParticipantB: battle.ParticipantB,
		TotalRounds:  battle.TotalRounds,
	})

	log.Printf("INFO: created battle %s: %s vs %s, %d rounds",
		battle.ID, battle.ParticipantA, battle.ParticipantB, battle.TotalRounds)
	return battle, nil
}

// GetBattle returns a consistent snapshot of the battle's current state.
func (s *Service) GetBattle(id string) (domain.BattleSnapshot, error) {
	battle, err := s.registry.Get(id)
	if err != nil {
		return domain.BattleSnapshot{}, err
	}
	return battle.Snapshot(), nil
}

// Battle returns the live battle handle. Observers use it to attach with a
// replay that stays consistent with concurrent generation.
func (s *Service) Battle(id string) (*domain.Battle, error) {
	return s.registry.Get(id)
}

// GetBattleEvents returns the battle's persisted transcript.
func (s *Service) GetBattleEvents(ctx context.Context, id string, afterTs int64, limit int) ([]domain.BattleEvent, error) {
	if _, err := s.registry.Get(id); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetEvents(ctx, id, afterTs, limit)
}
