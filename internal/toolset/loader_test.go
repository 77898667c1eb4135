package toolset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetServer(t *testing.T) (*httptest.Server, func(string) int) {
	t.Helper()
	var mu sync.Mutex
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		switch r.URL.Path {
		case "/assets/css/sigma.css", "/assets/css/cards.css":
			_, _ = w.Write([]byte("body{}"))
		case "/assets/lib/sigma.js", "/assets/lib/graphology.js",
			"/assets/lib/graphology-layout-forceatlas2.js", "/assets/lib/framer-motion.js":
			_, _ = w.Write([]byte("export default {}"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func(p string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[p]
	}
}

func TestNewHTTPLoader_RejectsBadScheme(t *testing.T) {
	_, err := NewHTTPLoader("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestHTTPLoader_LoadsAndSharesAssets(t *testing.T) {
	srv, hits := assetServer(t)
	l, err := NewHTTPLoader(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	m := NewWithOptions(Options{Loader: l})
	ctx := context.Background()

	require.NoError(t, m.LoadToolset(ctx, "graph"))
	require.NoError(t, m.LoadToolset(ctx, "hybrid"))
	assert.True(t, l.Has("lib/sigma.js"))
	assert.True(t, l.Has("css/cards.css"))
	assert.Equal(t, 1, hits("/assets/lib/sigma.js"), "shared library fetched once")
	assert.Positive(t, l.Bytes())

	require.NoError(t, m.UnloadToolset(ctx, "graph"))
	assert.True(t, l.Has("lib/sigma.js"), "hybrid still holds sigma")
	assert.False(t, l.Has("lib/graphology-layout-forceatlas2.js"))
}

func TestHTTPLoader_MissingResourceFailsLoad(t *testing.T) {
	srv, _ := assetServer(t)
	l, err := NewHTTPLoader(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	m := NewWithOptions(Options{Loader: l})

	err = m.LoadToolset(context.Background(), "document")
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, []string{"document"}, m.Snapshot().Failed)
}

func TestRegisterMetrics(t *testing.T) {
	g := openLoader()
	m := NewWithOptions(Options{Loader: g})
	reg := prometheus.NewRegistry()
	stop, err := RegisterMetrics(m, reg)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, m.LoadToolset(context.Background(), "graph"))
	g.fail.Store(true)
	require.Error(t, m.LoadToolset(context.Background(), "card"))

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if c := metric.GetCounter(); c != nil {
				got[key] = c.GetValue()
			}
			if gg := metric.GetGauge(); gg != nil {
				got[key] = gg.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, got["scened_toolset_loads_total/graph/success"])
	assert.Equal(t, 1.0, got["scened_toolset_loads_total/card/failure"])
	assert.Equal(t, 1.0, got["scened_toolset_keys/loaded"])
	assert.Equal(t, 1.0, got["scened_toolset_keys/failed"])
	assert.Equal(t, 0.0, got["scened_toolset_keys/loading"])
}

func TestHTTPLoader_UnloadKeepsLibrariesStillInUse(t *testing.T) {
	srv, hits := assetServer(t)
	l, err := NewHTTPLoader(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	m := NewWithOptions(Options{Loader: l})
	ctx := context.Background()

	require.NoError(t, m.LoadToolset(ctx, "graph"))
	require.NoError(t, m.LoadToolset(ctx, "hybrid"))
	require.NoError(t, m.UnloadToolset(ctx, "hybrid"))

	assert.True(t, m.IsLoaded("graph"))
	assert.True(t, l.Has("lib/sigma.js"), "graph still uses sigma")
	assert.True(t, l.Has("lib/graphology.js"))
	assert.False(t, l.Has("lib/framer-motion.js"), "only hybrid used framer-motion")

	require.NoError(t, m.UnloadToolset(ctx, "graph"))
	assert.False(t, l.Has("lib/sigma.js"))

	// reloading fetches the released library again
	require.NoError(t, m.LoadToolset(ctx, "graph"))
	assert.Equal(t, 2, hits("/assets/lib/sigma.js"))
}

func TestHTTPLoader_FailedLoadReleasesItsReferences(t *testing.T) {
	srv, _ := assetServer(t)
	l, err := NewHTTPLoader(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	ctx := context.Background()

	require.Error(t, l.LoadLibraries(ctx, []string{"sigma", "missing"}))
	assert.False(t, l.Has("lib/sigma.js"))
}

func TestHTTPLoader_RejectsOversizedAsset(t *testing.T) {
	srv, _ := assetServer(t)
	l, err := NewHTTPLoader(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	l.maxBytes = 8

	err = l.LoadLibraries(context.Background(), []string{"sigma"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 8 bytes")
	assert.False(t, l.Has("lib/sigma.js"))

	l.maxBytes = int64(len("export default {}"))
	require.NoError(t, l.LoadLibraries(context.Background(), []string{"sigma"}))
}
