package toolset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Loader fetches and releases the resources behind a toolset.
type Loader interface {
	LoadCSS(ctx context.Context, files []string) error
	LoadLibraries(ctx context.Context, libs []string) error
	UnloadLibraries(ctx context.Context, libs []string) error
}

// NopLoader succeeds without fetching anything.
type NopLoader struct{}

func (NopLoader) LoadCSS(context.Context, []string) error         { return nil }
func (NopLoader) LoadLibraries(context.Context, []string) error   { return nil }
func (NopLoader) UnloadLibraries(context.Context, []string) error { return nil }

// maxAssetBytes caps a single fetched resource.
const maxAssetBytes = 16 << 20

// HTTPLoader fetches stylesheets from <base>/css/<file> and libraries from
// <base>/lib/<name>.js, keeping the bodies in memory. An asset already held is
// not fetched again; each load takes a reference and a library is dropped
// once every toolset that loaded it has unloaded it.
type HTTPLoader struct {
	base     *url.URL
	client   *http.Client
	maxBytes int64

	mu     sync.RWMutex
	assets map[string]*asset
}

type asset struct {
	body []byte
	refs int
}

// NewHTTPLoader returns a loader rooted at baseURL. A nil client uses a
// client with a 30s timeout.
func NewHTTPLoader(baseURL string, client *http.Client) (*HTTPLoader, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("asset base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset base url: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{base: u, client: client, maxBytes: maxAssetBytes, assets: make(map[string]*asset)}, nil
}

func cssPath(file string) string { return "css/" + file }
func libPath(name string) string { return "lib/" + name + ".js" }

func (l *HTTPLoader) LoadCSS(ctx context.Context, files []string) error {
	for _, f := range files {
		if err := l.fetch(ctx, cssPath(f)); err != nil {
			return err
		}
	}
	return nil
}

// LoadLibraries fetches libs in order. On failure the references taken by
// this call are released again.
func (l *HTTPLoader) LoadLibraries(ctx context.Context, libs []string) error {
	for i, lib := range libs {
		if err := l.fetch(ctx, libPath(lib)); err != nil {
			l.release(libs[:i])
			return err
		}
	}
	return nil
}

func (l *HTTPLoader) UnloadLibraries(_ context.Context, libs []string) error {
	l.release(libs)
	return nil
}

func (l *HTTPLoader) release(libs []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, lib := range libs {
		p := libPath(lib)
		a, ok := l.assets[p]
		if !ok {
			continue
		}
		if a.refs--; a.refs <= 0 {
			delete(l.assets, p)
		}
	}
}

// Has reports whether the asset at path (e.g. "lib/sigma.js") is held.
func (l *HTTPLoader) Has(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.assets[path]
	return ok
}

// Bytes returns the total size of held assets.
func (l *HTTPLoader) Bytes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, a := range l.assets {
		n += len(a.body)
	}
	return n
}

// retain takes a reference on a held asset and reports whether it was held.
func (l *HTTPLoader) retain(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.assets[path]
	if ok {
		a.refs++
	}
	return ok
}

func (l *HTTPLoader) fetch(ctx context.Context, path string) error {
	if l.retain(path) {
		return nil
	}
	u := l.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(body)) > l.maxBytes {
		return fmt.Errorf("fetch %s: larger than %d bytes", path, l.maxBytes)
	}
	l.mu.Lock()
	if a, ok := l.assets[path]; ok {
		// fetched concurrently by another toolset
		a.refs++
	} else {
		l.assets[path] = &asset{body: body, refs: 1}
	}
	l.mu.Unlock()
	return nil
}
