package types

// SceneType is the closed set of scene kinds the console can author.
type SceneType string

const (
	SceneGraph     SceneType = "graph"
	SceneCard      SceneType = "card"
	SceneDocument  SceneType = "document"
	SceneDashboard SceneType = "dashboard"
	SceneCustom    SceneType = "custom"
)

// Valid reports whether t is one of the known scene types.
func (t SceneType) Valid() bool {
	switch t {
	case SceneGraph, SceneCard, SceneDocument, SceneDashboard, SceneCustom:
		return true
	}
	return false
}

// DeckType is the closed set of deck kinds.
type DeckType string

const (
	DeckGraph     DeckType = "graph"
	DeckCard      DeckType = "card"
	DeckDocument  DeckType = "document"
	DeckDashboard DeckType = "dashboard"
	DeckHybrid    DeckType = "hybrid"
)

// PreloadStrategy controls how neighbouring scenes are warmed.
type PreloadStrategy string

const (
	PreloadImmediate PreloadStrategy = "immediate"
	PreloadProximity PreloadStrategy = "proximity"
	PreloadOnDemand  PreloadStrategy = "on-demand"
)

// Valid reports whether s is one of the known strategies.
func (s PreloadStrategy) Valid() bool {
	switch s {
	case PreloadImmediate, PreloadProximity, PreloadOnDemand:
		return true
	}
	return false
}

// Scene is a single authored scene as supplied by the store layer.
type Scene struct {
	// Stable identifier for the scene.
	// example: intro-graph
	ID string `json:"id" yaml:"id" toml:"id" example:"intro-graph"`
	// Human-friendly name.
	// example: Introduction
	Name string `json:"name" yaml:"name" toml:"name" example:"Introduction"`
	// Scene type; selects the toolset needed to render it.
	// example: graph
	Type SceneType `json:"type" yaml:"type" toml:"type" example:"graph"`
	// Decks this scene belongs to.
	// example: ["onboarding"]
	DeckIDs []string `json:"deck_ids,omitempty" yaml:"deck_ids" toml:"deck_ids"`
}

// InDeck reports whether the scene belongs to deck id.
func (s Scene) InDeck(id string) bool {
	for _, d := range s.DeckIDs {
		if d == id {
			return true
		}
	}
	return false
}

// DeckPerformance holds per-deck cache hints.
type DeckPerformance struct {
	// Keep the deck's leading scenes warm.
	// example: true
	KeepWarm bool `json:"keep_warm" yaml:"keep_warm" toml:"keep_warm" example:"true"`
	// Preferred strategy for scenes in this deck.
	// example: proximity
	PreloadStrategy PreloadStrategy `json:"preload_strategy,omitempty" yaml:"preload_strategy" toml:"preload_strategy" example:"proximity"`
}

// Deck is an ordered collection of scenes.
type Deck struct {
	// example: onboarding
	ID string `json:"id" yaml:"id" toml:"id" example:"onboarding"`
	// example: Onboarding
	Name string `json:"name" yaml:"name" toml:"name" example:"Onboarding"`
	// example: graph
	Type        DeckType        `json:"type" yaml:"type" toml:"type" example:"graph"`
	Performance DeckPerformance `json:"performance" yaml:"performance" toml:"performance"`
}
