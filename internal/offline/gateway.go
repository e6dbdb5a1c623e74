package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mizukaze554/AnimeSearch/internal/config"
	"github.com/mizukaze554/AnimeSearch/internal/metrics"
)

// Gateway fronts the app shell origin and the metadata API, recording
// responses into the snapshot store and replaying them when upstream is
// unreachable.
type Gateway struct {
	snaps       *Snapshots
	client      *http.Client
	shellOrigin string
	apiOrigin   string
	shellAssets []string
	version     string
	logger      *slog.Logger
}

// NewGateway creates an offline gateway. A nil httpClient falls back to
// http.DefaultClient.
func NewGateway(cfg *config.GatewayConfig, apiOrigin string, snaps *Snapshots, httpClient *http.Client, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		snaps:       snaps,
		client:      httpClient,
		shellOrigin: strings.TrimRight(cfg.ShellOrigin, "/"),
		apiOrigin:   strings.TrimRight(apiOrigin, "/"),
		shellAssets: cfg.ShellAssets,
		version:     cfg.Version,
		logger:      logger,
	}
}

// InstallShell prefetches every shell asset and snapshots them in a single
// transaction. Any asset failing to fetch aborts the install and leaves the
// store untouched.
func (g *Gateway) InstallShell(ctx context.Context) error {
	entries := make(map[string]*Entry, len(g.shellAssets))
	for _, path := range g.shellAssets {
		entry, err := g.fetch(ctx, g.shellOrigin+path)
		if err != nil {
			metrics.ShellInstallsTotal.WithLabelValues(metrics.InstallError).Inc()
			return fmt.Errorf("failed to prefetch %s: %w", path, err)
		}
		if entry.Status != http.StatusOK {
			metrics.ShellInstallsTotal.WithLabelValues(metrics.InstallError).Inc()
			return fmt.Errorf("failed to prefetch %s: status %d", path, entry.Status)
		}
		entries[path] = entry
	}

	if err := g.snaps.PutAll(g.version, entries); err != nil {
		metrics.ShellInstallsTotal.WithLabelValues(metrics.InstallError).Inc()
		return fmt.Errorf("failed to store shell snapshot: %w", err)
	}

	metrics.ShellInstallsTotal.WithLabelValues(metrics.InstallSuccess).Inc()
	g.logger.Info("shell snapshot installed", "version", g.version, "assets", len(entries))
	return nil
}

// Activate prunes snapshot buckets belonging to other versions.
func (g *Gateway) Activate() error {
	if err := g.snaps.DropOthers(g.version); err != nil {
		return fmt.Errorf("failed to prune old snapshots: %w", err)
	}
	g.logger.Info("snapshot version activated", "version", g.version)
	return nil
}

// Router builds the gateway's HTTP routes.
func (g *Gateway) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(requestID)
	r.Use(requestLogger(g.logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", g.handleHealth)
	r.HandleFunc("/api/*", g.handleAPI)
	r.NotFound(g.handleShell)

	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": g.version})
}

// handleAPI is the network-first path: the live response always wins and
// refreshes the snapshot; only when upstream is unreachable does a stored
// response get replayed.
func (g *Gateway) handleAPI(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()
	target := g.apiOrigin + strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	entry, err := g.fetch(r.Context(), target)
	if err == nil {
		if entry.Status >= 200 && entry.Status < 300 {
			if err := g.snaps.Put(g.version, key, entry); err != nil {
				g.logger.Warn("failed to snapshot response", "key", key, "error", err)
			}
		}
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNetworkFirst, metrics.OutcomeUpstream).Inc()
		serveEntry(w, entry)
		return
	}

	g.logger.Warn("upstream unreachable, trying snapshot", "key", key, "error", err)
	if cached, ok := g.snaps.Get(g.version, key); ok {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNetworkFirst, metrics.OutcomeSnapshot).Inc()
		serveEntry(w, cached)
		return
	}

	metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNetworkFirst, metrics.OutcomeError).Inc()
	writeError(w, http.StatusBadGateway, "upstream unreachable", err.Error())
}

func (g *Gateway) handleShell(w http.ResponseWriter, r *http.Request) {
	if isNavigation(r) {
		g.handleNavigation(w, r)
		return
	}
	g.handleCacheFirst(w, r)
}

// handleCacheFirst serves shell assets from the snapshot without touching
// the network; only unknown paths fall through to the origin.
func (g *Gateway) handleCacheFirst(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if cached, ok := g.snaps.Get(g.version, key); ok {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyCacheFirst, metrics.OutcomeSnapshot).Inc()
		serveEntry(w, cached)
		return
	}

	entry, err := g.fetch(r.Context(), g.shellOrigin+r.URL.RequestURI())
	if err != nil {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyCacheFirst, metrics.OutcomeError).Inc()
		writeError(w, http.StatusBadGateway, "upstream unreachable", err.Error())
		return
	}
	if entry.Status >= 200 && entry.Status < 300 {
		if err := g.snaps.Put(g.version, key, entry); err != nil {
			g.logger.Warn("failed to snapshot response", "key", key, "error", err)
		}
	}
	metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyCacheFirst, metrics.OutcomeUpstream).Inc()
	serveEntry(w, entry)
}

// handleNavigation tries the origin and falls back to the snapshotted index
// page, so a reload while offline still lands on the app.
func (g *Gateway) handleNavigation(w http.ResponseWriter, r *http.Request) {
	entry, err := g.fetch(r.Context(), g.shellOrigin+r.URL.RequestURI())
	if err == nil {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNavigation, metrics.OutcomeUpstream).Inc()
		serveEntry(w, entry)
		return
	}

	if cached, ok := g.snaps.Get(g.version, "/index.html"); ok {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNavigation, metrics.OutcomeFallback).Inc()
		serveEntry(w, cached)
		return
	}
	if cached, ok := g.snaps.Get(g.version, "/"); ok {
		metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNavigation, metrics.OutcomeFallback).Inc()
		serveEntry(w, cached)
		return
	}

	metrics.SnapshotRequestsTotal.WithLabelValues(metrics.StrategyNavigation, metrics.OutcomeError).Inc()
	writeError(w, http.StatusServiceUnavailable, "offline", "no shell snapshot installed")
}

func (g *Gateway) fetch(ctx context.Context, url string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func serveEntry(w http.ResponseWriter, e *Entry) {
	for name, values := range e.Header {
		switch name {
		case "Connection", "Keep-Alive", "Transfer-Encoding":
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(e.Status)
	w.Write(e.Body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, errorResponse{Error: err, Message: message})
}
