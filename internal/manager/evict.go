package manager

import (
	"sort"
	"time"
)

// makeRoomLocked evicts least recently accessed entries until one more fits.
// It returns the evicted ids.
func (m *Manager) makeRoomLocked() []string {
	var evicted []string
	for len(m.scenes) > 0 && len(m.scenes) >= m.maxWarm {
		id := m.lruLocked()
		m.removeLocked(id)
		m.evictionsTotal++
		evicted = append(evicted, id)
	}
	return evicted
}

// lruLocked picks the entry with the oldest LastAccessed; ties go to the
// earliest inserted.
func (m *Manager) lruLocked() string {
	var lru *ScenePerformanceState
	for _, e := range m.scenes {
		if lru == nil || olderThan(e, lru) {
			lru = e
		}
	}
	if lru == nil {
		return ""
	}
	return lru.SceneID
}

func olderThan(a, b *ScenePerformanceState) bool {
	if a.LastAccessed.Equal(b.LastAccessed) {
		return a.seq < b.seq
	}
	return a.LastAccessed.Before(b.LastAccessed)
}

// Sweep removes every entry whose WarmUntil has passed and returns how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	var expired []string
	for id, e := range m.scenes {
		if now.After(e.WarmUntil) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		m.removeLocked(id)
		m.evictionsTotal++
	}
	warm := len(m.scenes)
	m.mu.Unlock()

	for _, id := range expired {
		m.emit("evict_ttl", id, map[string]any{"warm": warm})
	}
	return len(expired)
}

func (m *Manager) sweepLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}

func sortByRecency(s []ScenePerformanceState) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].LastAccessed.Equal(s[j].LastAccessed) {
			return s[i].seq > s[j].seq
		}
		return s[i].LastAccessed.After(s[j].LastAccessed)
	})
}
