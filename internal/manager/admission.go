package manager

import (
	"context"
	"time"
)

// acquireRenderSlot reserves one of the pre-render slots. With renderWait set
// it gives up with a tooBusyError once that wait elapses; otherwise it waits
// until a slot frees or ctx is done. Returns a release func to be deferred.
func (m *Manager) acquireRenderSlot(ctx context.Context, sceneID string) (func(), error) {
	var timeout <-chan time.Time
	if m.renderWait > 0 {
		t := time.NewTimer(m.renderWait)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case m.renderSlots <- struct{}{}:
		return func() { <-m.renderSlots }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timeout:
		return func() {}, tooBusyError{sceneID: sceneID}
	}
}

// RenderSlotsInUse reports how many pre-renders currently hold a slot.
func (m *Manager) RenderSlotsInUse() int { return len(m.renderSlots) }
