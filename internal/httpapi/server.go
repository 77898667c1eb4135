package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Imergent-Technology/Protogen-sub001/internal/manager"
	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// Service defines the cache operations required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Stats() types.PerformanceStats
	Ready() bool
	UpdateConfig(p types.ConfigPatch) error
	WarmScene(ctx context.Context, scene types.Scene) error
	WarmSceneAsync(scene types.Scene) string
	GetWarmScene(id string) (manager.ScenePerformanceState, bool)
	WarmScenes() []manager.ScenePerformanceState
	UnwarmScene(id string)
	SmartPreload(ctx context.Context, current types.Scene, nearby []types.Scene) error
	SmartPreloadInDeck(ctx context.Context, deck types.Deck, current types.Scene, nearby []types.Scene) error
	PreloadDeck(ctx context.Context, deck types.Deck, allScenes []types.Scene) error
}

// Toolsets is the toolset registry and loader exposed under /toolsets.
type Toolsets interface {
	Config(key string) (toolset.Config, bool)
	Configs() []toolset.Config
	Snapshot() toolset.State
	LoadToolset(ctx context.Context, key string) error
	UnloadToolset(ctx context.Context, key string) error
	Subscribe(fn func(toolset.State)) func()
}

// Catalog resolves scene and deck ids from the store layer.
type Catalog interface {
	Scene(id string) (types.Scene, bool)
	Deck(id string) (types.Deck, bool)
	Scenes() []types.Scene
}

// NewMux builds the HTTP handler. A nil catalog knows no scenes or decks.
func NewMux(svc Service, ts Toolsets, cat Catalog) http.Handler {
	if cat == nil {
		cat = emptyCatalog{}
	}
	h := &handlers{svc: svc, ts: ts, cat: cat}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("starting"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, svc.Status()) })
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, svc.Stats()) })
	r.Patch("/config", h.patchConfig)

	r.Route("/scenes", func(r chi.Router) {
		r.Get("/warm", h.listWarm)
		r.Post("/warm", h.warm)
		r.Get("/warm/{id}", h.getWarm)
		r.Delete("/warm/{id}", h.unwarm)
		r.Post("/{id}/preload", h.preloadScene)
	})
	r.Post("/decks/{id}/preload", h.preloadDeck)

	if ts != nil {
		r.Route("/toolsets", func(r chi.Router) {
			r.Get("/", h.listToolsets)
			r.Get("/events", h.toolsetEvents)
			r.Post("/{key}/load", h.loadToolset)
			r.Delete("/{key}", h.unloadToolset)
		})
	}

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

type handlers struct {
	svc Service
	ts  Toolsets
	cat Catalog
}

type emptyCatalog struct{}

func (emptyCatalog) Scene(string) (types.Scene, bool) { return types.Scene{}, false }
func (emptyCatalog) Deck(string) (types.Deck, bool)   { return types.Deck{}, false }
func (emptyCatalog) Scenes() []types.Scene            { return nil }

// decodeJSON enforces the JSON content type and body limit and decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// also covers oversized bodies; the size is not reported back
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *handlers) patchConfig(w http.ResponseWriter, r *http.Request) {
	var p types.ConfigPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.svc.UpdateConfig(p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *handlers) listWarm(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.WarmScenes()
	out := make([]types.WarmSceneStatus, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status())
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": out})
}

// warm handles POST /scenes/warm. The scene comes from the body or is
// resolved from the catalog by id; ?async=1 answers 202 with an op id.
func (h *handlers) warm(w http.ResponseWriter, r *http.Request) {
	var req types.WarmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var scene types.Scene
	switch {
	case req.Scene != nil:
		scene = *req.Scene
	case strings.TrimSpace(req.SceneID) != "":
		s, ok := h.cat.Scene(req.SceneID)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", errSceneNotFound, req.SceneID))
			return
		}
		scene = s
	default:
		writeJSONError(w, http.StatusBadRequest, "scene_id or scene is required")
		return
	}
	if scene.ID == "" {
		writeJSONError(w, http.StatusBadRequest, "scene id is required")
		return
	}

	if r.URL.Query().Get("async") == "1" {
		op := h.svc.WarmSceneAsync(scene)
		logf(r, LevelInfo, "warm accepted scene=%s op=%s", scene.ID, op)
		writeJSON(w, http.StatusAccepted, types.OperationResponse{OpID: op})
		return
	}

	ctx, cancel := warmContext(r)
	defer cancel()
	if err := h.svc.WarmScene(ctx, scene); err != nil {
		if gaveUp(r) {
			return
		}
		if ctx.Err() != nil {
			writeJSONError(w, http.StatusGatewayTimeout, "warm still in progress: "+scene.ID)
			return
		}
		logf(r, LevelError, "warm scene=%s: %v", scene.ID, err)
		writeError(w, err)
		return
	}
	e, ok := h.svc.GetWarmScene(scene.ID)
	if !ok {
		// evicted between commit and read by a concurrent warm
		writeError(w, manager.ErrSceneNotWarm(scene.ID))
		return
	}
	writeJSON(w, http.StatusOK, e.Status())
}

func (h *handlers) getWarm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := h.svc.GetWarmScene(id)
	if !ok {
		writeError(w, manager.ErrSceneNotWarm(id))
		return
	}
	writeJSON(w, http.StatusOK, e.Status())
}

func (h *handlers) unwarm(w http.ResponseWriter, r *http.Request) {
	h.svc.UnwarmScene(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// preloadScene resolves the current scene and its neighbours from the catalog
// and runs SmartPreload, or SmartPreloadInDeck when the body names a deck.
func (h *handlers) preloadScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, ok := h.cat.Scene(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", errSceneNotFound, id))
		return
	}
	var req types.PreloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	nearby := make([]types.Scene, 0, len(req.Nearby))
	for _, nid := range req.Nearby {
		s, ok := h.cat.Scene(nid)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", errSceneNotFound, nid))
			return
		}
		nearby = append(nearby, s)
	}
	if req.DeckID != "" {
		deck, ok := h.cat.Deck(req.DeckID)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", errDeckNotFound, req.DeckID))
			return
		}
		h.runPreload(w, r, func(ctx context.Context) error {
			return h.svc.SmartPreloadInDeck(ctx, deck, current, nearby)
		})
		return
	}
	h.runPreload(w, r, func(ctx context.Context) error {
		return h.svc.SmartPreload(ctx, current, nearby)
	})
}

func (h *handlers) preloadDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deck, ok := h.cat.Deck(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", errDeckNotFound, id))
		return
	}
	h.runPreload(w, r, func(ctx context.Context) error {
		return h.svc.PreloadDeck(ctx, deck, h.cat.Scenes())
	})
}

func (h *handlers) runPreload(w http.ResponseWriter, r *http.Request, run func(context.Context) error) {
	ctx, cancel := warmContext(r)
	defer cancel()
	if err := run(ctx); err != nil {
		if gaveUp(r) {
			return
		}
		if ctx.Err() != nil {
			writeJSONError(w, http.StatusGatewayTimeout, "preload still in progress")
			return
		}
		logf(r, LevelError, "preload %s: %v", r.URL.Path, err)
		writeError(w, err)
		return
	}
	h.listWarm(w, r)
}

func (h *handlers) toolsetInfo(c toolset.Config, s toolset.State) types.ToolsetInfo {
	return types.ToolsetInfo{
		Key:       c.Key,
		Libraries: c.Libraries,
		CSS:       c.CSS,
		Preload:   c.Preload,
		State:     s.Status(c.Key),
	}
}

func (h *handlers) listToolsets(w http.ResponseWriter, r *http.Request) {
	snap := h.ts.Snapshot()
	configs := h.ts.Configs()
	out := make([]types.ToolsetInfo, 0, len(configs))
	for _, c := range configs {
		out = append(out, h.toolsetInfo(c, snap))
	}
	writeJSON(w, http.StatusOK, map[string]any{"toolsets": out})
}

func (h *handlers) loadToolset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	ctx, cancel := warmContext(r)
	defer cancel()
	if err := h.ts.LoadToolset(ctx, key); err != nil {
		if gaveUp(r) {
			return
		}
		if ctx.Err() != nil {
			writeJSONError(w, http.StatusGatewayTimeout, "toolset load still in progress: "+key)
			return
		}
		writeError(w, err)
		return
	}
	c, _ := h.ts.Config(key)
	writeJSON(w, http.StatusOK, h.toolsetInfo(c, h.ts.Snapshot()))
}

func (h *handlers) unloadToolset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := h.ts.Config(key); !ok {
		writeError(w, toolset.ErrUnknownToolset(key))
		return
	}
	if err := h.ts.UnloadToolset(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toolsetEvents streams toolset state snapshots as server-sent events: one on
// connect, then one per state change. Snapshots are dropped, never queued
// unboundedly, when the client reads slower than states change.
func (h *handlers) toolsetEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	updates := make(chan toolset.State, 8)
	unsub := h.ts.Subscribe(func(s toolset.State) {
		select {
		case updates <- s:
		default:
		}
	})
	defer unsub()
	sseClients.Inc()
	defer sseClients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(s toolset.State) bool {
		b, err := json.Marshal(toToolsetStatus(s))
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: toolsets\ndata: %s\n\n", b); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(h.ts.Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-serverBaseCtx.Done():
			return
		case s := <-updates:
			if !send(s) {
				return
			}
		}
	}
}

func toToolsetStatus(s toolset.State) types.ToolsetStatus {
	return types.ToolsetStatus{Loaded: s.Loaded, Loading: s.Loading, Failed: s.Failed}
}
