package manager

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// SmartPreload warms scenes near current according to the preload strategy:
// on-demand warms nothing, immediate warms every nearby scene and proximity
// warms the first few. Warms run in parallel; the first error is returned.
func (m *Manager) SmartPreload(ctx context.Context, current types.Scene, nearby []types.Scene) error {
	m.mu.RLock()
	strategy := m.strategy
	m.mu.RUnlock()
	return m.preloadNearby(ctx, strategy, current, nearby)
}

// SmartPreloadInDeck is SmartPreload for navigation inside deck: the deck's
// own preload strategy, when set, replaces the configured one.
func (m *Manager) SmartPreloadInDeck(ctx context.Context, deck types.Deck, current types.Scene, nearby []types.Scene) error {
	strategy := deck.Performance.PreloadStrategy
	if !strategy.Valid() {
		m.mu.RLock()
		strategy = m.strategy
		m.mu.RUnlock()
	}
	return m.preloadNearby(ctx, strategy, current, nearby)
}

func (m *Manager) preloadNearby(ctx context.Context, strategy types.PreloadStrategy, current types.Scene, nearby []types.Scene) error {
	var targets []types.Scene
	for _, s := range nearby {
		if s.ID != current.ID {
			targets = append(targets, s)
		}
	}
	switch strategy {
	case types.PreloadOnDemand:
		return nil
	case types.PreloadProximity:
		if len(targets) > proximityWindow {
			targets = targets[:proximityWindow]
		}
	}
	return m.warmAll(ctx, targets)
}

// PreloadDeck warms the leading scenes of deck when the deck asks to be kept warm.
func (m *Manager) PreloadDeck(ctx context.Context, deck types.Deck, allScenes []types.Scene) error {
	if !deck.Performance.KeepWarm {
		return nil
	}
	var targets []types.Scene
	for _, s := range allScenes {
		if s.InDeck(deck.ID) {
			targets = append(targets, s)
			if len(targets) == deckPreloadLimit {
				break
			}
		}
	}
	m.emit("deck_preload", deck.ID, map[string]any{"scenes": len(targets)})
	return m.warmAll(ctx, targets)
}

func (m *Manager) warmAll(ctx context.Context, scenes []types.Scene) error {
	var g errgroup.Group
	for _, s := range scenes {
		s := s
		g.Go(func() error { return m.WarmScene(ctx, s) })
	}
	return g.Wait()
}
