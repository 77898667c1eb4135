package toolset

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// State is a snapshot of the three key sets. Slices are sorted and owned by the caller.
type State struct {
	Loaded  []string
	Loading []string
	Failed  []string
}

// Status returns the state name of key: loaded, loading, failed or unloaded.
func (s State) Status(key string) string {
	for _, set := range []struct {
		name string
		keys []string
	}{{"loaded", s.Loaded}, {"loading", s.Loading}, {"failed", s.Failed}} {
		for _, k := range set.keys {
			if k == key {
				return set.name
			}
		}
	}
	return "unloaded"
}

// Options configures a Manager. Zero values select defaults.
type Options struct {
	// Registry overrides the built-in registry.
	Registry []Config
	// Loader fetches resources; NopLoader when nil.
	Loader Loader
	Logger *zerolog.Logger
}

// Manager tracks which toolsets are loaded and serializes loads per key.
type Manager struct {
	mu      sync.RWMutex
	configs map[string]Config
	order   []string
	loaded  map[string]struct{}
	loading map[string]struct{}
	failed  map[string]struct{}

	loader  Loader
	log     zerolog.Logger
	flights singleflight.Group

	lmu       sync.Mutex
	listeners map[int]func(State)
	nextID    int
	// nmu orders deliveries: snapshot and listener calls happen under it.
	nmu sync.Mutex
}

// New constructs a Manager with the built-in registry and a NopLoader.
func New() *Manager { return NewWithOptions(Options{}) }

// NewWithOptions constructs a Manager from Options.
func NewWithOptions(opts Options) *Manager {
	reg := opts.Registry
	if reg == nil {
		reg = Builtin()
	}
	m := &Manager{
		configs:   make(map[string]Config, len(reg)),
		loaded:    make(map[string]struct{}),
		loading:   make(map[string]struct{}),
		failed:    make(map[string]struct{}),
		loader:    opts.Loader,
		log:       zerolog.Nop(),
		listeners: make(map[int]func(State)),
	}
	if m.loader == nil {
		m.loader = NopLoader{}
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "toolset").Logger()
	}
	for _, c := range reg {
		if _, dup := m.configs[c.Key]; !dup {
			m.order = append(m.order, c.Key)
		}
		m.configs[c.Key] = c.clone()
	}
	return m
}

// Config looks up the registry entry for key.
func (m *Manager) Config(key string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.configs[key]
	if !ok {
		return Config{}, false
	}
	return c.clone(), true
}

// Configs returns all registry entries in registration order.
func (m *Manager) Configs() []Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Config, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.configs[k].clone())
	}
	return out
}

// IsLoaded reports whether key is in the loaded set.
func (m *Manager) IsLoaded(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.loaded[key]
	return ok
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	return State{
		Loaded:  sortedKeys(m.loaded),
		Loading: sortedKeys(m.loading),
		Failed:  sortedKeys(m.failed),
	}
}

// Subscribe registers fn to receive a snapshot after every state transition.
// Deliveries are serialized, so the last snapshot fn sees is the current
// state. fn must not load or unload toolsets itself. The returned func
// removes the registration.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.lmu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.lmu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.lmu.Lock()
			delete(m.listeners, id)
			m.lmu.Unlock()
		})
	}
}

// notify runs listeners synchronously, outside the state lock. The snapshot
// is taken under nmu so a slow listener cannot receive states out of order.
func (m *Manager) notify() {
	m.nmu.Lock()
	defer m.nmu.Unlock()
	snap := m.Snapshot()
	m.lmu.Lock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()
	for _, fn := range fns {
		fn(State{
			Loaded:  append([]string(nil), snap.Loaded...),
			Loading: append([]string(nil), snap.Loading...),
			Failed:  append([]string(nil), snap.Failed...),
		})
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
