package types

// WarmRequest is the body of POST /scenes/warm. Either SceneID (resolved
// against the catalog) or Scene must be set.
type WarmRequest struct {
	// example: intro-graph
	SceneID string `json:"scene_id,omitempty" example:"intro-graph"`
	Scene   *Scene `json:"scene,omitempty"`
}

// PreloadRequest is the body of POST /scenes/{id}/preload.
type PreloadRequest struct {
	// Scenes adjacent to the current one, in priority order.
	// example: ["intro-cards","intro-doc"]
	Nearby []string `json:"nearby"`
	// Deck being navigated; its preload strategy, if set, overrides the configured one.
	// example: onboarding
	DeckID string `json:"deck_id,omitempty" example:"onboarding"`
}

// ConfigPatch is a partial update of the cache configuration. Nil fields are left untouched.
type ConfigPatch struct {
	// example: 10
	MaxWarmScenes *int `json:"max_warm_scenes,omitempty" example:"10"`
	// example: 300
	WarmTTLSeconds *int `json:"warm_ttl_seconds,omitempty" example:"300"`
	// example: proximity
	PreloadStrategy *PreloadStrategy `json:"preload_strategy,omitempty" example:"proximity"`
}

// WarmSceneStatus summarizes one warm cache entry.
type WarmSceneStatus struct {
	// example: intro-graph
	SceneID string `json:"scene_id" example:"intro-graph"`
	// example: graph
	Type SceneType `json:"type" example:"graph"`
	// Render progress: unloaded, json, rendered, warm.
	// example: rendered
	RenderState string `json:"render_state" example:"rendered"`
	// Last access time (unix seconds).
	// example: 1700000000
	LastAccessed int64 `json:"last_accessed_unix" example:"1700000000"`
	// Expiry time (unix seconds).
	// example: 1700000300
	WarmUntil int64 `json:"warm_until_unix" example:"1700000300"`
	// Size of the pre-rendered output in bytes.
	// example: 2048
	RenderedBytes int `json:"rendered_bytes" example:"2048"`
}

// PerformanceStats is returned by GET /stats.
type PerformanceStats struct {
	// example: 3
	TotalWarmScenes int `json:"total_warm_scenes" example:"3"`
	// Heuristic memory units (unloaded=1, json=10, rendered=100, warm=200).
	// example: 300
	MemoryUsage int `json:"memory_usage" example:"300"`
	// Measured size of all pre-rendered output.
	// example: 6144
	RenderedBytes int `json:"rendered_bytes" example:"6144"`
	// Mean time since last access, in milliseconds.
	// example: 1500
	AverageAgeMs int64 `json:"average_age_ms" example:"1500"`
	// Entry count per render state.
	ByState map[string]int `json:"by_state"`
	// example: 10
	MaxWarmScenes int `json:"max_warm_scenes" example:"10"`
}

// ToolsetInfo describes one registry entry and its current state.
type ToolsetInfo struct {
	// example: graph
	Key string `json:"key" example:"graph"`
	// example: ["sigma","graphology"]
	Libraries []string `json:"libraries"`
	// example: ["sigma.css"]
	CSS []string `json:"css"`
	// example: true
	Preload bool `json:"preload" example:"true"`
	// One of loaded, loading, failed, unloaded.
	// example: loaded
	State string `json:"state" example:"loaded"`
}

// ToolsetStatus is the snapshot of the toolset state sets.
type ToolsetStatus struct {
	Loaded  []string `json:"loaded"`
	Loading []string `json:"loading"`
	Failed  []string `json:"failed"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// example: ready
	State string `json:"state" example:"ready"`
	// Warm cache entries, most recently accessed first.
	Scenes []WarmSceneStatus `json:"scenes"`
	// example: 10
	MaxWarmScenes int `json:"max_warm_scenes" example:"10"`
	// example: 300
	WarmTTLSeconds int64 `json:"warm_ttl_seconds" example:"300"`
	// example: proximity
	PreloadStrategy PreloadStrategy `json:"preload_strategy" example:"proximity"`
	// Warms currently in flight.
	// example: 1
	WarmsInProgress int `json:"warms_in_progress" example:"1"`
	// Pre-renders holding a render slot.
	// example: 1
	RendersInFlight int `json:"renders_in_flight" example:"1"`
	// example: 4
	EvictionsTotal uint64 `json:"evictions_total" example:"4"`
	// example: 12
	WarmsTotal uint64 `json:"warms_total" example:"12"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
}

// OperationResponse is returned for accepted asynchronous operations.
type OperationResponse struct {
	// example: 7d9f7a43-6c1e-4d43-9a1a-7f2f4f5b1c2e
	OpID string `json:"op_id" example:"7d9f7a43-6c1e-4d43-9a1a-7f2f4f5b1c2e"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// example: scene not warm: intro-graph
	Error string `json:"error" example:"scene not warm: intro-graph"`
	// example: 404
	Code int `json:"code" example:"404"`
}
