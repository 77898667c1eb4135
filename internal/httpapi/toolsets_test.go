package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// failingLoader rejects stylesheet loads for the keys' CSS it is given.
type failingLoader struct{ toolset.NopLoader }

func (failingLoader) LoadCSS(_ context.Context, files []string) error {
	if len(files) > 0 && files[0] == "prism.css" {
		return errors.New("fetch css/prism.css: status 404")
	}
	return nil
}

func newToolsets() *toolset.Manager {
	return toolset.NewWithOptions(toolset.Options{Loader: failingLoader{}})
}

func TestListToolsets(t *testing.T) {
	ts := newToolsets()
	r := NewMux(newMockService(), ts, nil)
	if err := ts.LoadToolset(context.Background(), "graph"); err != nil {
		t.Fatalf("load: %v", err)
	}
	w := doJSON(r, http.MethodGet, "/toolsets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body struct {
		Toolsets []types.ToolsetInfo `json:"toolsets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Toolsets) != 6 {
		t.Fatalf("toolsets=%d", len(body.Toolsets))
	}
	states := map[string]string{}
	for _, info := range body.Toolsets {
		states[info.Key] = info.State
	}
	if states["graph"] != "loaded" || states["card"] != "unloaded" {
		t.Fatalf("states=%v", states)
	}
}

func TestLoadAndUnloadToolset(t *testing.T) {
	ts := newToolsets()
	r := NewMux(newMockService(), ts, nil)

	w := doJSON(r, http.MethodPost, "/toolsets/card/load", "")
	if w.Code != http.StatusOK {
		t.Fatalf("load status=%d body=%s", w.Code, w.Body.String())
	}
	var info types.ToolsetInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.State != "loaded" {
		t.Fatalf("info=%+v err=%v", info, err)
	}

	if w := doJSON(r, http.MethodPost, "/toolsets/hologram/load", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown load status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/toolsets/document/load", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("failed load status=%d", w.Code)
	}
	if got := ts.Snapshot().Status("document"); got != "failed" {
		t.Fatalf("document state=%s", got)
	}

	if w := doJSON(r, http.MethodDelete, "/toolsets/card", ""); w.Code != http.StatusNoContent {
		t.Fatalf("unload status=%d", w.Code)
	}
	if ts.IsLoaded("card") {
		t.Fatalf("card still loaded")
	}
	if w := doJSON(r, http.MethodDelete, "/toolsets/hologram", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown unload status=%d", w.Code)
	}
}

func TestToolsetsRoutesAbsentWithoutManager(t *testing.T) {
	r := NewMux(newMockService(), nil, nil)
	if w := doJSON(r, http.MethodGet, "/toolsets", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestToolsetEventsStream(t *testing.T) {
	ts := newToolsets()
	srv := httptest.NewServer(NewMux(newMockService(), ts, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/toolsets/events", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%s", ct)
	}

	events := make(chan types.ToolsetStatus, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var st types.ToolsetStatus
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &st) == nil {
				events <- st
			}
		}
		close(events)
	}()

	next := func() types.ToolsetStatus {
		t.Helper()
		select {
		case st, ok := <-events:
			if !ok {
				t.Fatalf("stream closed")
			}
			return st
		case <-ctx.Done():
			t.Fatalf("no event")
		}
		return types.ToolsetStatus{}
	}

	if first := next(); len(first.Loaded) != 0 {
		t.Fatalf("initial snapshot=%+v", first)
	}
	if err := ts.LoadToolset(context.Background(), "graph"); err != nil {
		t.Fatalf("load: %v", err)
	}
	for {
		st := next()
		if len(st.Loaded) == 1 && st.Loaded[0] == "graph" {
			break
		}
	}
}

// stalledLoader never finishes loading stylesheets until stop is closed.
type stalledLoader struct {
	toolset.NopLoader
	stop chan struct{}
}

func (l stalledLoader) LoadCSS(context.Context, []string) error {
	<-l.stop
	return nil
}

func TestLoadToolsetTimeoutReturns504(t *testing.T) {
	defer SetWarmTimeoutSeconds(0)
	SetWarmTimeoutSeconds(1)
	stop := make(chan struct{})
	defer close(stop)
	ts := toolset.NewWithOptions(toolset.Options{Loader: stalledLoader{stop: stop}})
	r := NewMux(newMockService(), ts, nil)

	w := doJSON(r, http.MethodPost, "/toolsets/graph/load", "")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d body=%s", w.Code, w.Body.String())
	}
	if got := ts.Snapshot().Status("graph"); got != "loading" {
		t.Fatalf("load should continue in the background, state=%s", got)
	}
}
