// Package service drives battles through their rounds: it owns the
// orchestration loop that pulls verses from the generation port and pushes
// stream events outward.
package service

import (
	"github.com/oksmith/ai-rap-battle/internal/adapter/llm"
	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/domain"
	"github.com/oksmith/ai-rap-battle/internal/registry"
	"github.com/oksmith/ai-rap-battle/internal/repository"
)

// EventSink receives the orchestrator's emissions for one open stream.
// A sink error means the client side of the stream is gone.
type EventSink func(ev domain.StreamEvent) error

// EventBroadcaster fans stream events out to read-only observers.
type EventBroadcaster interface {
	BroadcastEvent(battleID string, ev domain.StreamEvent)
}

// Service wires the registry, transcript store, generation port and
// observer broadcaster together.
type Service struct {
	registry    *registry.Registry
	store       repository.Store
	generator   llm.VerseGenerator
	broadcaster EventBroadcaster
	config      *config.Config
}

// New creates the service. store and broadcaster may be nil; transcript
// writes and observer fan-out are then skipped.
func New(reg *registry.Registry, store repository.Store, generator llm.VerseGenerator, broadcaster EventBroadcaster, cfg *config.Config) *Service {
	return &Service{
		registry:    reg,
		store:       store,
		generator:   generator,
		broadcaster: broadcaster,
		config:      cfg,
	}
}
