package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// errSinkClosed marks a sink write failure: the streaming client is gone.
var errSinkClosed = errors.New("stream client gone")

// errBattleAborted signals that a turn failed and the failure was already
// delivered in-band as an error event.
var errBattleAborted = errors.New("battle aborted")

// StreamBattle runs one battle stream against the sink. Already-finalized
// verses are replayed as immediate verse-complete events, then generation
// resumes from the next open turn; a battle that is already complete
// replays everything and finishes with the terminal marker.
//
// ErrNotFound and ErrBattleBusy are returned before any event is emitted.
// Once emission starts, turn failures are delivered in-band and the return
// is nil; a non-nil return after that point means the sink itself failed
// or the context was cancelled.
func (s *Service) StreamBattle(ctx context.Context, battleID string, sink EventSink) error {
	battle, err := s.registry.Get(battleID)
	if err != nil {
		return err
	}

	if !battle.TryAcquireStream() {
		return domain.ErrBattleBusy
	}
	defer battle.ReleaseStream()

	log.Printf("INFO: stream opened for battle %s", battle.ID)

	for i, v := range battle.Verses() {
		ev := domain.StreamEvent{
			Type:   domain.StreamEventVerseComplete,
			Rapper: v.Rapper,
			Verse:  v.Content,
			Round:  v.Round,
			Seq:    i,
		}
		if err := s.emit(battle.ID, sink, ev); err != nil {
			return err
		}
	}

	for {
		turn, ok := battle.NextTurn()
		if !ok {
			break
		}
		if err := s.runTurn(ctx, battle, turn, sink); err != nil {
			if errors.Is(err, errBattleAborted) {
				return nil
			}
			return err
		}
	}

	if err := s.emit(battle.ID, sink, domain.StreamEvent{Type: domain.StreamEventBattleComplete, Seq: -1}); err != nil {
		return err
	}

	log.Printf("INFO: stream finished for battle %s", battle.ID)
	return nil
}

// runTurn generates one verse: announce the turn, stream fragments with the
// cumulative buffer, then finalize the verse off the port's completion. A
// nil return means the verse was appended; errBattleAborted means the turn
// failed and the error event went out in-band.
func (s *Service) runTurn(ctx context.Context, battle *domain.Battle, turn domain.Turn, sink EventSink) error {
	announce := domain.StreamEvent{
		Type:   domain.StreamEventTurnAnnounce,
		Rapper: turn.Rapper,
		Round:  turn.Round,
		Seq:    turn.Index,
	}
	if err := s.emit(battle.ID, sink, announce); err != nil {
		return err
	}
	s.recordEvent(ctx, battle.ID, domain.BattleEventTurnStarted, domain.TurnStartedPayload{
		Rapper: turn.Rapper,
		Round:  turn.Round,
	})

	turnCtx, cancel := context.WithTimeout(ctx, s.config.GenerationTimeout)
	defer cancel()

	var buf strings.Builder
	content, err := s.generator.StreamVerse(turnCtx, turn, func(fragment string) error {
		buf.WriteString(fragment)
		return s.emit(battle.ID, sink, domain.StreamEvent{
			Type:   domain.StreamEventFragment,
			Rapper: turn.Rapper,
			Verse:  buf.String(),
			Round:  turn.Round,
			Seq:    turn.Index,
		})
	})
	if err != nil {
		return s.abortTurn(ctx, battle, turn, sink, err)
	}

	verse := domain.Verse{Rapper: turn.Rapper, Content: content, Round: turn.Round}
	if err := battle.AppendVerse(verse); err != nil {
		return s.abortTurn(ctx, battle, turn, sink, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err))
	}

	done := domain.StreamEvent{
		Type:   domain.StreamEventVerseComplete,
		Rapper: verse.Rapper,
		Verse:  verse.Content,
		Round:  verse.Round,
		Seq:    turn.Index,
	}
	if err := s.emit(battle.ID, sink, done); err != nil {
		return err
	}
	s.recordEvent(ctx, battle.ID, domain.BattleEventVerseFinalized, domain.VerseFinalizedPayload{
		Rapper:  verse.Rapper,
		Round:   verse.Round,
		Content: verse.Content,
	})

	if battle.Complete() {
		s.recordEvent(ctx, battle.ID, domain.BattleEventCompleted, domain.BattleCompletedPayload{
			Rounds: battle.TotalRounds,
			Verses: 2 * battle.TotalRounds,
		})
		log.Printf("INFO: battle %s complete after %d rounds", battle.ID, battle.TotalRounds)
	}
	return nil
}

// abortTurn classifies a turn failure. Client disconnects and cancelled
// contexts end the stream quietly; everything else becomes a generation
// failure delivered in-band. No partial verse is ever committed.
func (s *Service) abortTurn(ctx context.Context, battle *domain.Battle, turn domain.Turn, sink EventSink, cause error) error {
	switch {
	case errors.Is(cause, errSinkClosed):
		log.Printf("WARN: client disconnected from battle %s mid-turn: %v", battle.ID, cause)
		return cause
	case ctx.Err() != nil:
		log.Printf("WARN: stream for battle %s cancelled mid-turn", battle.ID)
		return ctx.Err()
	case errors.Is(cause, context.DeadlineExceeded):
		cause = fmt.Errorf("%w: timeout", domain.ErrGenerationFailed)
	case !errors.Is(cause, domain.ErrGenerationFailed):
		cause = fmt.Errorf("%w: %v", domain.ErrGenerationFailed, cause)
	}

	log.Printf("ERROR: %v (battle %s, %s round %d)", cause, battle.ID, turn.Rapper, turn.Round)
	s.recordEvent(ctx, battle.ID, domain.BattleEventGenerationFailed, domain.GenerationFailedPayload{
		Rapper: turn.Rapper,
		Round:  turn.Round,
		Reason: cause.Error(),
	})

	if err := s.emit(battle.ID, sink, domain.StreamEvent{Type: domain.StreamEventError, Err: cause.Error(), Seq: -1}); err != nil {
		return err
	}
	return errBattleAborted
}

// emit writes one event to the sink and fans it out to observers.
func (s *Service) emit(battleID string, sink EventSink, ev domain.StreamEvent) error {
	if err := sink(ev); err != nil {
		return fmt.Errorf("%w: %v", errSinkClosed, err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(battleID, ev)
	}
	return nil
}
