package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

type Manager struct {
	mu       sync.RWMutex
	maxWarm  int
	warmTTL  time.Duration
	strategy types.PreloadStrategy
	scenes   map[string]*ScenePerformanceState
	// pending holds ids whose warm is in flight; they are not yet visible in scenes.
	pending map[string]struct{}
	stage   *stage
	seq     uint64
	// epoch is bumped by Destroy; a warm started in an older epoch does not commit.
	epoch uint64

	toolsets  ToolsetLoader
	renderer  Renderer
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
	flights   singleflight.Group

	// renderSlots bounds concurrent pre-renders; renderWait caps the wait for one.
	renderSlots chan struct{}
	renderWait  time.Duration

	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepDone     chan struct{}

	// counters
	warmsTotal     uint64
	evictionsTotal uint64
	lastErr        string
	startTime      time.Time
}

// New constructs a Manager with package defaults.
func New() *Manager { return NewWithConfig(ManagerConfig{}) }

// Initialize creates the off-screen stage and starts the TTL sweeper.
// Calling it again while initialized is a no-op.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureStageLocked()
	if m.stopSweep != nil {
		return
	}
	m.stopSweep = make(chan struct{})
	m.sweepDone = make(chan struct{})
	go m.sweepLoop(m.sweepInterval, m.stopSweep, m.sweepDone)
	m.log.Info().Str("event", "initialize").Dur("sweep_interval", m.sweepInterval).
		Int("max_warm_scenes", m.maxWarm).Msg("manager")
}

// Ready reports whether the manager has been initialized and not destroyed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stage != nil && m.stopSweep != nil
}

// Destroy stops the sweeper, unwarms every scene and removes the stage.
func (m *Manager) Destroy() {
	m.mu.Lock()
	stop, done := m.stopSweep, m.sweepDone
	m.stopSweep, m.sweepDone = nil, nil
	ids := make([]string, 0, len(m.scenes))
	for id := range m.scenes {
		ids = append(ids, id)
		m.removeLocked(id)
	}
	m.stage = nil
	m.epoch++
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	for _, id := range ids {
		m.emit("unwarm", id, map[string]any{"reason": "destroy", "warm": 0})
	}
	m.log.Info().Str("event", "destroy").Int("unwarmed", len(ids)).Msg("manager")
}

// removeLocked drops an entry and its stage element.
func (m *Manager) removeLocked(id string) {
	e, ok := m.scenes[id]
	if !ok {
		return
	}
	delete(m.scenes, id)
	e.RenderElement = nil
	if m.stage != nil {
		m.stage.unmount(id)
	}
}

func (m *Manager) ensureStageLocked() *stage {
	if m.stage == nil {
		m.stage = newStage()
	}
	return m.stage
}

// stage is the off-screen container that holds mounted pre-rendered output.
// It is guarded by Manager.mu.
type stage struct {
	elements map[string][]byte
}

func newStage() *stage { return &stage{elements: make(map[string][]byte)} }

func (s *stage) mount(id string, el []byte) { s.elements[id] = el }

func (s *stage) unmount(id string) { delete(s.elements, id) }

func (s *stage) len() int { return len(s.elements) }
