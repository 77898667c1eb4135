package manager

// UnwarmScene removes a scene from the warm set. Unknown ids are ignored.
func (m *Manager) UnwarmScene(id string) {
	m.mu.Lock()
	if _, ok := m.scenes[id]; !ok {
		m.mu.Unlock()
		return
	}
	m.removeLocked(id)
	warm := len(m.scenes)
	m.mu.Unlock()
	m.emit("unwarm", id, map[string]any{"warm": warm})
}
