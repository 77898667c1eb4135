package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// WarmScene makes scene warm. An already warm scene only has its recency and
// expiry refreshed. Otherwise the scene type's toolset is loaded, the scene is
// pre-rendered, and the entry is committed, evicting the least recently
// accessed entry first when the cache is full. The entry is not visible to
// reads, sweeps or eviction until the commit. Concurrent calls for one id
// share a single warm; cancelling ctx stops waiting but not the shared warm.
// Scenes without an id or of an unknown type are rejected. A warm still in
// flight when Destroy runs is discarded instead of committed.
func (m *Manager) WarmScene(ctx context.Context, scene types.Scene) error {
	if scene.ID == "" {
		return invalidSceneError{msg: "empty id"}
	}
	if !scene.Type.Valid() {
		return invalidSceneError{msg: fmt.Sprintf("scene %s: unknown type %q", scene.ID, scene.Type)}
	}
	if m.touch(scene.ID) {
		m.emit("warm_hit", scene.ID, map[string]any{})
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	detached := context.WithoutCancel(ctx)
	ch := m.flights.DoChan(scene.ID, func() (any, error) {
		return nil, m.warm(detached, scene)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) warm(ctx context.Context, scene types.Scene) error {
	startTs := time.Now()
	if m.touch(scene.ID) {
		return nil
	}
	m.mu.Lock()
	m.pending[scene.ID] = struct{}{}
	epoch := m.epoch
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.pending, scene.ID)
		m.mu.Unlock()
	}()
	m.emit("warm_start", scene.ID, map[string]any{"type": string(scene.Type)})

	if err := m.toolsets.LoadToolset(ctx, string(scene.Type)); err != nil {
		m.fail(scene.ID, err)
		return fmt.Errorf("warm scene %s: %w", scene.ID, err)
	}

	release, err := m.acquireRenderSlot(ctx, scene.ID)
	if err != nil {
		m.fail(scene.ID, err)
		return fmt.Errorf("warm scene %s: %w", scene.ID, err)
	}
	el, err := m.renderer.Prerender(ctx, scene)
	release()
	if err != nil {
		// nothing was committed, so no stale entry is left behind
		perr := &PrerenderError{SceneID: scene.ID, Err: err}
		m.fail(scene.ID, perr)
		return perr
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		err := destroyedError{sceneID: scene.ID}
		m.emit("warm_discarded", scene.ID, map[string]any{"reason": "destroy"})
		return err
	}
	evicted := m.makeRoomLocked()
	now := m.now()
	m.seq++
	m.scenes[scene.ID] = &ScenePerformanceState{
		SceneID:       scene.ID,
		Type:          scene.Type,
		RenderState:   RenderRendered,
		LastAccessed:  now,
		WarmUntil:     now.Add(m.warmTTL),
		RenderElement: el,
		seq:           m.seq,
	}
	m.ensureStageLocked().mount(scene.ID, el)
	m.warmsTotal++
	warm := len(m.scenes)
	m.mu.Unlock()

	for _, id := range evicted {
		m.emit("evict_lru", id, map[string]any{"warm": warm})
	}
	m.emit("warm_ready", scene.ID, map[string]any{
		"warm":   warm,
		"bytes":  len(el),
		"dur_ms": int(time.Since(startTs) / time.Millisecond),
	})
	return nil
}

func (m *Manager) fail(id string, err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.emit("warm_error", id, map[string]any{"error": err.Error()})
}

// touch refreshes recency and expiry of a warm entry. It reports whether the entry exists.
func (m *Manager) touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.scenes[id]
	if !ok {
		return false
	}
	m.touchLocked(e)
	return true
}

func (m *Manager) touchLocked(e *ScenePerformanceState) {
	now := m.now()
	e.LastAccessed = now
	e.WarmUntil = now.Add(m.warmTTL)
}

// GetWarmScene returns the warm entry for id, refreshing its recency. It does
// not re-render.
func (m *Manager) GetWarmScene(id string) (ScenePerformanceState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.scenes[id]
	if !ok {
		return ScenePerformanceState{}, false
	}
	m.touchLocked(e)
	return *e, true
}

// WarmScenes returns copies of all warm entries, most recently accessed first.
func (m *Manager) WarmScenes() []ScenePerformanceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ScenePerformanceState, 0, len(m.scenes))
	for _, e := range m.scenes {
		out = append(out, *e)
	}
	sortByRecency(out)
	return out
}
