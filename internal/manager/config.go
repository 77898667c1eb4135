package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxWarmScenes   = 10
	defaultWarmTTL         = 5 * time.Minute
	defaultSweepInterval   = 60 * time.Second
	defaultPreloadStrategy = types.PreloadProximity
	defaultMaxRenders      = 4

	// proximityWindow is how many nearby scenes the proximity strategy warms.
	proximityWindow = 3
	// deckPreloadLimit is how many leading scenes PreloadDeck warms.
	deckPreloadLimit = 5
)

// ToolsetLoader makes a scene type's libraries available before rendering.
type ToolsetLoader interface {
	LoadToolset(ctx context.Context, key string) error
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	MaxWarmScenes   int
	WarmTTL         time.Duration
	SweepInterval   time.Duration
	PreloadStrategy types.PreloadStrategy
	// PrerenderDelay configures the default SnapshotRenderer when Renderer is nil.
	PrerenderDelay time.Duration
	// MaxConcurrentRenders bounds pre-renders running at once.
	MaxConcurrentRenders int
	// RenderQueueWait is how long a warm waits for a render slot before
	// failing as too busy. Zero waits indefinitely.
	RenderQueueWait time.Duration

	Toolsets  ToolsetLoader
	Renderer  Renderer
	Publisher EventPublisher
	Logger    *zerolog.Logger
	// Now overrides the clock (tests).
	Now func() time.Time
}

type readyToolsets struct{}

func (readyToolsets) LoadToolset(context.Context, string) error { return nil }

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		maxWarm:       cfg.MaxWarmScenes,
		warmTTL:       cfg.WarmTTL,
		sweepInterval: cfg.SweepInterval,
		strategy:      cfg.PreloadStrategy,
		toolsets:      cfg.Toolsets,
		renderer:      cfg.Renderer,
		publisher:     cfg.Publisher,
		log:           zerolog.Nop(),
		now:           cfg.Now,
		scenes:        make(map[string]*ScenePerformanceState),
		pending:       make(map[string]struct{}),
		renderWait:    cfg.RenderQueueWait,
	}
	renders := cfg.MaxConcurrentRenders
	if renders <= 0 {
		renders = defaultMaxRenders
	}
	m.renderSlots = make(chan struct{}, renders)
	// Apply defaults if unset
	if m.maxWarm <= 0 {
		m.maxWarm = defaultMaxWarmScenes
	}
	if m.warmTTL <= 0 {
		m.warmTTL = defaultWarmTTL
	}
	if m.sweepInterval <= 0 {
		m.sweepInterval = defaultSweepInterval
	}
	if !m.strategy.Valid() {
		m.strategy = defaultPreloadStrategy
	}
	if m.toolsets == nil {
		m.toolsets = readyToolsets{}
	}
	if m.renderer == nil {
		m.renderer = SnapshotRenderer{Delay: cfg.PrerenderDelay}
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.startTime = m.now()
	return m
}
