package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeToolsets records loads and can be told to fail.
type fakeToolsets struct {
	mu    sync.Mutex
	loads []string
	err   error
}

func (f *fakeToolsets) LoadToolset(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, key)
	return f.err
}

func (f *fakeToolsets) Loads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loads...)
}

// countingRenderer counts prerenders; a non-nil gate blocks each render until closed.
type countingRenderer struct {
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
	err     error
}

func (r *countingRenderer) Prerender(ctx context.Context, scene types.Scene) ([]byte, error) {
	r.calls.Add(1)
	if r.started != nil {
		r.once.Do(func() { close(r.started) })
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("<scene " + scene.ID + ">"), nil
}

var errBoom = errors.New("boom")

func scene(id string) types.Scene {
	return types.Scene{ID: id, Name: id, Type: types.SceneGraph}
}

func newTestManager(t *testing.T, cfg ManagerConfig) (*Manager, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	if cfg.Now == nil {
		cfg.Now = clk.Now
	}
	m := NewWithConfig(cfg)
	t.Cleanup(m.Destroy)
	return m, clk
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func warmIDs(m *Manager) map[string]bool {
	out := map[string]bool{}
	for _, s := range m.WarmScenes() {
		out[s.SceneID] = true
	}
	return out
}
