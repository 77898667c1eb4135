package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + scene ID and optional fields via key/values.
type Event struct {
	Name    string
	SceneID string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers in order.
type MultiPublisher []EventPublisher

func (mp MultiPublisher) Publish(e Event) {
	for _, p := range mp {
		if p != nil {
			p.Publish(e)
		}
	}
}

// emit logs the event and hands it to the publisher.
func (m *Manager) emit(name, sceneID string, fields map[string]any) {
	ev := m.log.Debug()
	switch name {
	case "warm_error":
		ev = m.log.Warn()
	case "warm_ready", "evict_lru", "evict_ttl":
		ev = m.log.Info()
	}
	ev.Str("event", name).Str("scene", sceneID).Fields(fields).Msg("manager")
	m.publisher.Publish(Event{Name: name, SceneID: sceneID, Fields: fields})
}
