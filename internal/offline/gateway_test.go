package offline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mizukaze554/AnimeSearch/internal/config"
	"github.com/mizukaze554/AnimeSearch/internal/log"
)

func newTestSnapshots(t *testing.T) *Snapshots {
	t.Helper()

	snaps, err := OpenSnapshots(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSnapshots failed: %v", err)
	}
	t.Cleanup(func() { snaps.Close() })
	return snaps
}

func newTestGateway(t *testing.T, snaps *Snapshots, shellOrigin, apiOrigin string) *Gateway {
	t.Helper()

	cfg := &config.GatewayConfig{
		ShellOrigin: shellOrigin,
		ShellAssets: []string{"/", "/index.html", "/app.js"},
		Version:     "animesearch-v1",
	}
	return NewGateway(cfg, apiOrigin, snaps, nil, log.NullLogger())
}

// shellUpstream serves a fixed set of assets and counts hits.
func shellUpstream(hits *atomic.Int64) *httptest.Server {
	assets := map[string]string{
		"/":           "<html>index</html>",
		"/index.html": "<html>index</html>",
		"/app.js":     "console.log('app')",
		"/style.css":  "body{}",
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := assets[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestGateway_InstallShell(t *testing.T) {
	var hits atomic.Int64
	shell := shellUpstream(&hits)
	defer shell.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, shell.URL, "")

	if err := g.InstallShell(context.Background()); err != nil {
		t.Fatalf("InstallShell failed: %v", err)
	}

	for _, path := range []string{"/", "/index.html", "/app.js"} {
		if _, ok := snaps.Get("animesearch-v1", path); !ok {
			t.Errorf("asset %s not snapshotted", path)
		}
	}
}

func TestGateway_InstallShell_AbortsOnAnyFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app.js" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, srv.URL, "")

	if err := g.InstallShell(context.Background()); err == nil {
		t.Fatal("expected install to fail")
	}

	// A partial install must not leave any asset behind.
	for _, path := range []string{"/", "/index.html", "/app.js"} {
		if _, ok := snaps.Get("animesearch-v1", path); ok {
			t.Errorf("asset %s snapshotted despite failed install", path)
		}
	}
}

func TestGateway_CacheFirst_ServesSnapshotWithoutNetwork(t *testing.T) {
	var hits atomic.Int64
	shell := shellUpstream(&hits)
	defer shell.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, shell.URL, "")
	if err := g.InstallShell(context.Background()); err != nil {
		t.Fatalf("InstallShell failed: %v", err)
	}
	installHits := hits.Load()

	router := g.Router()
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "console.log('app')" {
			t.Errorf("body = %q", rec.Body.String())
		}
	}

	if hits.Load() != installHits {
		t.Errorf("upstream hit %d times after install, want 0", hits.Load()-installHits)
	}
}

func TestGateway_CacheFirst_MissFetchesThenCaches(t *testing.T) {
	var hits atomic.Int64
	shell := shellUpstream(&hits)
	defer shell.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, shell.URL, "")
	router := g.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("status/body = %d/%q", rec.Code, rec.Body.String())
	}
	if hits.Load() != 1 {
		t.Fatalf("upstream hits = %d, want 1", hits.Load())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d after second request, want 1", hits.Load())
	}
}

func TestGateway_NetworkFirst_AlwaysHitsUpstream(t *testing.T) {
	var hits atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer api.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, "", api.URL)
	router := g.Router()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anime?q=naruto", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	if hits.Load() != 2 {
		t.Errorf("upstream hits = %d, want 2 (network-first never skips the network)", hits.Load())
	}
}

func TestGateway_NetworkFirst_FallsBackToSnapshot(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":["stale"]}`))
	}))

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, "", api.URL)
	router := g.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anime?q=naruto", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Upstream goes away; the snapshotted response is replayed.
	api.Close()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anime?q=naruto", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 from snapshot", rec.Code)
	}
	if rec.Body.String() != `{"data":["stale"]}` {
		t.Errorf("body = %q, want snapshotted payload", rec.Body.String())
	}
}

func TestGateway_NetworkFirst_NoSnapshotIsBadGateway(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	api.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, "", api.URL)

	rec := httptest.NewRecorder()
	g.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anime?q=naruto", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGateway_Navigation_FallsBackToIndex(t *testing.T) {
	var hits atomic.Int64
	shell := shellUpstream(&hits)

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, shell.URL, "")
	if err := g.InstallShell(context.Background()); err != nil {
		t.Fatalf("InstallShell failed: %v", err)
	}

	shell.Close()

	req := httptest.NewRequest(http.MethodGet, "/some/route", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	g.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "<html>index</html>" {
		t.Errorf("body = %q, want cached index page", rec.Body.String())
	}
}

func TestGateway_Navigation_NoSnapshotIsUnavailable(t *testing.T) {
	shell := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	shell.Close()

	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, shell.URL, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec := httptest.NewRecorder()
	g.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGateway_Activate_PrunesOtherVersions(t *testing.T) {
	var hits atomic.Int64
	shell := shellUpstream(&hits)
	defer shell.Close()

	snaps := newTestSnapshots(t)
	if err := snaps.Put("animesearch-v0", "/app.js", &Entry{Status: 200, Body: []byte("old")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	g := newTestGateway(t, snaps, shell.URL, "")
	if err := g.InstallShell(context.Background()); err != nil {
		t.Fatalf("InstallShell failed: %v", err)
	}
	if err := g.Activate(); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	tags := snaps.Tags()
	if len(tags) != 1 || tags[0] != "animesearch-v1" {
		t.Errorf("tags = %v, want only animesearch-v1", tags)
	}
	if _, ok := snaps.Get("animesearch-v0", "/app.js"); ok {
		t.Error("old version snapshot survived activation")
	}
}

func TestGateway_Health(t *testing.T) {
	snaps := newTestSnapshots(t)
	g := newTestGateway(t, snaps, "", "")

	rec := httptest.NewRecorder()
	g.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
