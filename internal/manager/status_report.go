package manager

import (
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// Stats aggregates the warm set: entry count, heuristic memory units, measured
// rendered bytes and the mean time since last access.
func (m *Manager) Stats() types.PerformanceStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	st := types.PerformanceStats{
		TotalWarmScenes: len(m.scenes),
		ByState:         make(map[string]int),
		MaxWarmScenes:   m.maxWarm,
	}
	var age time.Duration
	for _, e := range m.scenes {
		st.MemoryUsage += memoryWeight[e.RenderState]
		st.RenderedBytes += len(e.RenderElement)
		st.ByState[string(e.RenderState)]++
		age += now.Sub(e.LastAccessed)
	}
	if n := len(m.scenes); n > 0 {
		st.AverageAgeMs = int64(age/time.Duration(n)) / int64(time.Millisecond)
	}
	return st
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	scenes := m.WarmScenes()
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := "ready"
	if m.stage == nil || m.stopSweep == nil {
		state = "stopped"
	} else if len(m.pending) > 0 {
		state = "warming"
	}
	resp := types.StatusResponse{
		State:           state,
		Scenes:          make([]types.WarmSceneStatus, 0, len(scenes)),
		MaxWarmScenes:   m.maxWarm,
		WarmTTLSeconds:  int64(m.warmTTL / time.Second),
		PreloadStrategy: m.strategy,
		WarmsInProgress: len(m.pending),
		RendersInFlight: m.RenderSlotsInUse(),
		EvictionsTotal:  m.evictionsTotal,
		WarmsTotal:      m.warmsTotal,
		UptimeSeconds:   int64(m.now().Sub(m.startTime) / time.Second),
		LastError:       m.lastErr,
	}
	for _, s := range scenes {
		resp.Scenes = append(resp.Scenes, s.Status())
	}
	return resp
}

// UpdateConfig merges p into the live configuration. Only later calls are
// affected: existing entries keep their expiry and an over-full cache shrinks
// on the next insert.
func (m *Manager) UpdateConfig(p types.ConfigPatch) error {
	if p.MaxWarmScenes != nil && *p.MaxWarmScenes < 1 {
		return invalidConfigError{msg: "max_warm_scenes must be >= 1"}
	}
	if p.WarmTTLSeconds != nil && *p.WarmTTLSeconds < 1 {
		return invalidConfigError{msg: "warm_ttl_seconds must be >= 1"}
	}
	if p.PreloadStrategy != nil && !p.PreloadStrategy.Valid() {
		return invalidConfigError{msg: "unknown preload_strategy " + string(*p.PreloadStrategy)}
	}
	m.mu.Lock()
	if p.MaxWarmScenes != nil {
		m.maxWarm = *p.MaxWarmScenes
	}
	if p.WarmTTLSeconds != nil {
		m.warmTTL = time.Duration(*p.WarmTTLSeconds) * time.Second
	}
	if p.PreloadStrategy != nil {
		m.strategy = *p.PreloadStrategy
	}
	maxWarm, ttl, strategy := m.maxWarm, m.warmTTL, m.strategy
	m.mu.Unlock()
	m.log.Info().Str("event", "config_update").Int("max_warm_scenes", maxWarm).
		Dur("warm_ttl", ttl).Str("preload_strategy", string(strategy)).Msg("manager")
	return nil
}
