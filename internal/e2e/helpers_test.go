package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Imergent-Technology/Protogen-sub001/internal/httpapi"
	"github.com/Imergent-Technology/Protogen-sub001/internal/manager"
	"github.com/Imergent-Technology/Protogen-sub001/internal/registry"
	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
)

const catalogYAML = `
scenes:
  - {id: s1, name: One, type: graph, deck_ids: [tour]}
  - {id: s2, name: Two, type: card, deck_ids: [tour]}
  - {id: s3, name: Three, type: graph, deck_ids: [tour]}
  - {id: s4, name: Four, type: document}
  - {id: s5, name: Five, type: dashboard}
decks:
  - id: tour
    name: Tour
    type: hybrid
    performance: {keep_warm: true}
`

// createCatalogDir writes a catalog file into a temporary directory.
func createCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(catalogYAML), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return dir
}

// assetServer serves every toolset asset except the ones under missing.
func assetServer(t *testing.T, missing ...string) (*httptest.Server, func() int) {
	t.Helper()
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		for _, m := range missing {
			if strings.HasSuffix(r.URL.Path, m) {
				http.NotFound(w, r)
				return
			}
		}
		_, _ = w.Write([]byte("/* asset */"))
	}))
	t.Cleanup(srv.Close)
	return srv, func() int {
		mu.Lock()
		defer mu.Unlock()
		return hits
	}
}

type stack struct {
	srv      *httptest.Server
	mgr      *manager.Manager
	toolsets *toolset.Manager
	events   *manager.MemoryPublisher
}

// newStack wires the real toolset manager, cache and catalog behind the HTTP API.
func newStack(t *testing.T, assetsURL string, cfg manager.ManagerConfig) *stack {
	t.Helper()
	loader, err := toolset.NewHTTPLoader(assetsURL, nil)
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	ts := toolset.NewWithOptions(toolset.Options{Loader: loader})
	cat, err := registry.LoadDir(createCatalogDir(t))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	events := manager.NewMemoryPublisher()
	cfg.Toolsets = ts
	cfg.Publisher = events
	mgr := manager.NewWithConfig(cfg)
	mgr.Initialize()
	t.Cleanup(mgr.Destroy)
	srv := httptest.NewServer(httpapi.NewMux(mgr, ts, registry.NewStore(cat)))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, mgr: mgr, toolsets: ts, events: events}
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
