package toolset

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadToolset ensures the bundle for key is loaded. Callers arriving while a
// load is in flight wait for that load's result; a failed key is retried.
// Cancelling ctx stops this caller from waiting but not the shared load.
func (m *Manager) LoadToolset(ctx context.Context, key string) error {
	cfg, ok := m.Config(key)
	if !ok {
		return ErrUnknownToolset(key)
	}
	if m.IsLoaded(key) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	detached := context.WithoutCancel(ctx)
	ch := m.flights.DoChan(key, func() (any, error) {
		return nil, m.load(detached, cfg)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) load(ctx context.Context, cfg Config) error {
	m.mu.Lock()
	if _, ok := m.loaded[cfg.Key]; ok {
		// finished by a flight that ended between the caller's check and ours
		m.mu.Unlock()
		return nil
	}
	delete(m.failed, cfg.Key)
	m.loading[cfg.Key] = struct{}{}
	m.mu.Unlock()
	m.notify()
	m.log.Debug().Str("event", "load_start").Str("toolset", cfg.Key).Msg("toolset")

	start := time.Now()
	err := m.loader.LoadCSS(ctx, cfg.CSS)
	if err == nil {
		err = m.loader.LoadLibraries(ctx, cfg.Libraries)
	}

	m.mu.Lock()
	delete(m.loading, cfg.Key)
	if err != nil {
		m.failed[cfg.Key] = struct{}{}
	} else {
		m.loaded[cfg.Key] = struct{}{}
	}
	m.mu.Unlock()
	m.notify()

	if err != nil {
		m.log.Error().Str("event", "load_failed").Str("toolset", cfg.Key).Err(err).Msg("toolset")
		return &LoadError{Key: cfg.Key, Err: err}
	}
	m.log.Info().Str("event", "load_done").Str("toolset", cfg.Key).
		Dur("dur", time.Since(start)).Msg("toolset")
	return nil
}

// UnloadToolset releases a loaded bundle. Keys that are not loaded are ignored.
// Cleanup failures are logged; the key is removed regardless.
func (m *Manager) UnloadToolset(ctx context.Context, key string) error {
	m.mu.RLock()
	_, ok := m.loaded[key]
	cfg := m.configs[key]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := m.loader.UnloadLibraries(ctx, cfg.Libraries); err != nil {
		m.log.Warn().Str("event", "unload_cleanup").Str("toolset", key).Err(err).Msg("toolset")
	}
	m.mu.Lock()
	delete(m.loaded, key)
	m.mu.Unlock()
	m.notify()
	m.log.Info().Str("event", "unload_done").Str("toolset", key).Msg("toolset")
	return nil
}

// PreloadToolsets loads, in parallel, every key in keys whose config asks for
// preloading and which is neither loaded nor loading. It returns the first error.
func (m *Manager) PreloadToolsets(ctx context.Context, keys []string) error {
	var g errgroup.Group
	for _, key := range m.preloadCandidates(keys) {
		key := key
		g.Go(func() error { return m.LoadToolset(ctx, key) })
	}
	return g.Wait()
}

func (m *Manager) preloadCandidates(keys []string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool, len(keys))
	var out []string
	for _, k := range keys {
		cfg, ok := m.configs[k]
		if !ok || !cfg.Preload || seen[k] {
			continue
		}
		if _, ok := m.loaded[k]; ok {
			continue
		}
		if _, ok := m.loading[k]; ok {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
