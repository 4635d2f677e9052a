package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"inkdash/internal/config"
	appLog "inkdash/internal/log"
	"inkdash/internal/model"
)

// ModelBuilder assembles a fresh render model. The dashboard page and the
// model API both go through this interface so the capture pipeline and the
// Web UI see the exact same data.
type ModelBuilder interface {
	Build(ctx context.Context) (model.RenderModel, error)
}

// Server provides the dashboard page plus small JSON APIs around it.
// /dashboard is the page the headless capture navigates to; /api/model
// exposes the same render model as JSON for inspection.
type Server struct {
	mux *http.ServeMux

	// cfg and builder are swapped on config reload; guard both.
	mu      sync.RWMutex
	cfg     *config.Config
	builder ModelBuilder

	// In-memory cache for built models to avoid redundant upstream
	// fetches when the capture and the API hit the server back to back.
	modelMu    sync.RWMutex
	modelCache *modelCache
}

// modelCacheTTL bounds how stale a served model may be. The refresh cron
// runs on a much coarser grid, so a short TTL only deduplicates bursts.
const modelCacheTTL = 30 * time.Second

// modelCache holds the last built render model and its timestamp.
type modelCache struct {
	m         model.RenderModel
	updatedAt time.Time
}

//go:embed templates/dashboard.html
var embeddedTemplates embed.FS

var dashboardTmpl = template.Must(template.ParseFS(embeddedTemplates, "templates/dashboard.html"))

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, builder ModelBuilder) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		cfg:     cfg,
		builder: builder,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Update swaps the active config and builder after a config reload and
// drops the model cache so the next request reflects the new settings.
func (s *Server) Update(cfg *config.Config, builder ModelBuilder) {
	s.mu.Lock()
	s.cfg = cfg
	s.builder = builder
	s.mu.Unlock()

	s.modelMu.Lock()
	s.modelCache = nil
	s.modelMu.Unlock()
}

// StartServer starts an HTTP server bound to cfg.Listen. Graceful
// shutdown is handled by the caller wrapping this in an http.Server.
func StartServer(_ context.Context, cfg *config.Config, builder ModelBuilder) error {
	s := NewServer(cfg, builder)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/model", s.handleModel)
	s.mux.HandleFunc("/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/assets/", s.handleAssets)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// snapshot returns the active config and builder under the read lock.
func (s *Server) snapshot() (*config.Config, ModelBuilder) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.builder
}

// buildModel returns a render model, serving from the short-lived cache
// when fresh. Building goes through the full aggregation pipeline, so a
// failure here means a render-blocking source failed.
func (s *Server) buildModel(ctx context.Context) (model.RenderModel, error) {
	now := time.Now()

	s.modelMu.RLock()
	mc := s.modelCache
	s.modelMu.RUnlock()
	if mc != nil && now.Sub(mc.updatedAt) < modelCacheTTL {
		return mc.m, nil
	}

	_, builder := s.snapshot()
	m, err := builder.Build(ctx)
	if err != nil {
		return model.RenderModel{}, err
	}

	s.modelMu.Lock()
	s.modelCache = &modelCache{m: m, updatedAt: time.Now()}
	s.modelMu.Unlock()

	return m, nil
}

// handleModel returns the current render model as JSON.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.buildModel(r.Context())
	if err != nil {
		appLog.Error("api model: build failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build render model")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// dashboardPage is the template data for /dashboard. The data-ready
// attribute on <body> is what the headless capture waits for, so it is
// only rendered on a fully built model.
type dashboardPage struct {
	Width  int
	Height int
	Model  model.RenderModel

	// WeatherIconURL is the Icon asset path rebased onto /assets/.
	WeatherIconURL string
}

// handleDashboard renders the dashboard HTML sized to the configured
// panel resolution. A build failure returns 500 without the data-ready
// marker, which in turn fails the capture instead of photographing a
// half-filled page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	m, err := s.buildModel(r.Context())
	if err != nil {
		appLog.Error("dashboard: build failed", err)
		http.Error(w, "failed to build render model", http.StatusInternalServerError)
		return
	}

	cfg, _ := s.snapshot()
	width, height := cfg.Resolution()
	page := dashboardPage{
		Width:  width,
		Height: height,
		Model:  m,
	}
	if m.Weather != nil && m.Weather.Icon != "" {
		page.WeatherIconURL = "/assets/icons/" + filepath.Base(m.Weather.Icon)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, page); err != nil {
		appLog.Error("dashboard: template execute failed", err)
	}
}

// handlePreview serves the last captured PNG from disk. http.ServeFile
// maps a missing file to 404 on its own.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.snapshot()
	http.ServeFile(w, r, cfg.OutputPath)
}

// handleAssets serves icons and other static files from the configured
// assets directory.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/assets/")
	if rel == "" || strings.Contains(rel, "..") {
		http.NotFound(w, r)
		return
	}
	cfg, _ := s.snapshot()
	http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.AssetsDir))).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
