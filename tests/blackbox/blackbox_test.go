package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the daemon binary")
	}
	binPath := filepath.Join(t.TempDir(), "scened")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/scened")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func createCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `{"scenes":[{"id":"intro","type":"graph","deck_ids":["tour"]},{"id":"pricing","type":"card","deck_ids":["tour"]}],
"decks":[{"id":"tour","type":"hybrid","performance":{"keep_warm":true}}]}`
	if err := os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return dir
}

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18080
}

func startServer(t *testing.T, bin string, extra ...string) *serverProc {
	t.Helper()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	args := append([]string{"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--log-format", "console"}, extra...)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _, _ = cmd.Process.Wait() })
	// Wait for healthz
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return &serverProc{cmd: cmd, base: base}
}

func do(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
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
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	sp := startServer(t, bin, "--catalog-dir", createCatalogDir(t), "--max-warm-scenes", "1")

	resp, body := do(t, http.MethodGet, sp.base+"/readyz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, sp.base+"/scenes/warm", []byte(`{"scene_id":"intro"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("warm intro %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, http.MethodPost, sp.base+"/scenes/warm", []byte(`{"scene_id":"pricing"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("warm pricing %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, sp.base+"/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d %s", resp.StatusCode, body)
	}
	var status struct {
		State  string `json:"state"`
		Scenes []struct {
			SceneID string `json:"scene_id"`
		} `json:"scenes"`
		EvictionsTotal int `json:"evictions_total"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if len(status.Scenes) != 1 || status.Scenes[0].SceneID != "pricing" || status.EvictionsTotal != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}

	resp, body = do(t, http.MethodGet, sp.base+"/toolsets", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"key":"graph"`) {
		t.Fatalf("/toolsets %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, sp.base+"/metrics", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "scened_cache_warm_scenes 1") {
		t.Fatalf("/metrics missing cache gauge: %d", resp.StatusCode)
	}

	out, err := exec.Command(bin, "stats", "--server", sp.base).CombinedOutput()
	if err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "1 / 1") {
		t.Fatalf("stats output:\n%s", out)
	}
}

func TestBlackbox_UnknownScene404(t *testing.T) {
	bin := buildBinary(t)
	sp := startServer(t, bin, "--catalog-dir", createCatalogDir(t))
	resp, body := do(t, http.MethodPost, sp.base+"/scenes/warm", []byte(`{"scene_id":"missing"}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", resp.StatusCode, body)
	}
}

func TestBlackbox_GracefulShutdown(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no SIGINT on windows")
	}
	bin := buildBinary(t)
	sp := startServer(t, bin)
	if err := sp.cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("signal: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- sp.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unclean exit: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not stop")
	}
}
