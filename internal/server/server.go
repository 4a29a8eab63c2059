// Package server exposes the derived weather and scene state over HTTP,
// including a websocket channel pushing every refresh to subscribers.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/atrium/internal/engine"
	"github.com/jmylchreest/atrium/internal/render"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Config configures the HTTP server.
type Config struct {
	Addr    string
	Source  WeatherSource
	Manager *engine.SceneManager // optional; enables the scene endpoints
	Logger  hclog.Logger
}

// Server serves the weather API. The latest parameter set is guarded by a
// mutex; the poller stores into it and the websocket hub fans it out.
type Server struct {
	addr    string
	source  WeatherSource
	manager *engine.SceneManager
	logger  hclog.Logger
	hub     *Hub

	mu     sync.RWMutex
	latest *weather.Params
}

// weatherEnvelope is the /api/ai-weather response shape. The remote
// provider consumes exactly this structure.
type weatherEnvelope struct {
	Weather  *weather.Params `json:"weather"`
	Cached   bool            `json:"cached"`
	CacheAge float64         `json:"cacheAge"` // seconds
	Stale    bool            `json:"stale"`
}

// New creates a server. A nil logger silences request logging.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		addr:    cfg.Addr,
		source:  cfg.Source,
		manager: cfg.Manager,
		logger:  logger,
		hub:     NewHub(logger.Named("ws")),
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// SetLatest stores a freshly derived parameter set and pushes it to every
// websocket subscriber. The poller calls this on each successful refresh.
func (s *Server) SetLatest(p weather.Params) {
	s.mu.Lock()
	cp := p
	s.latest = &cp
	s.mu.Unlock()

	s.hub.Broadcast(p)
}

// Latest returns the last stored parameter set, if any.
func (s *Server) Latest() (weather.Params, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return weather.Params{}, false
	}
	return *s.latest, true
}

// Handler builds the route table wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ai-weather", s.handleAIWeather)
	mux.HandleFunc("/api/weather/current", s.handleCurrentWeather)
	mux.HandleFunc("/api/scene/state", s.handleSceneState)
	mux.HandleFunc("/api/scene/snapshot.png", s.handleSnapshot)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ws/weather", s.handleWeatherSocket)
	return logRequests(s.logger, mux)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleAIWeather(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	params, info, err := s.source.Current(r.Context())
	if err != nil {
		http.Error(w, "failed to derive weather: "+err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, weatherEnvelope{
		Weather:  &params,
		Cached:   info.Cached,
		CacheAge: info.Age.Seconds(),
		Stale:    info.Stale,
	})
}

func (s *Server) handleCurrentWeather(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	if params, ok := s.Latest(); ok {
		s.writeJSON(w, params)
		return
	}

	// No poll has completed yet; fall back to the source.
	params, _, err := s.source.Current(r.Context())
	if err != nil {
		http.Error(w, "failed to derive weather: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, params)
}

func (s *Server) handleSceneState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if s.manager == nil {
		http.Error(w, "no scene attached", http.StatusNotFound)
		return
	}
	s.writeJSON(w, s.manager.GetSceneState())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if s.manager == nil {
		http.Error(w, "no scene attached", http.StatusNotFound)
		return
	}

	width := queryInt(r, "width", 800)
	height := queryInt(r, "height", 450)

	renderer := render.New(render.Options{Width: width, Height: height})
	defer renderer.Dispose()
	s.manager.Snapshot(renderer)

	w.Header().Set("Content-Type", "image/png")
	if err := renderer.EncodePNG(w); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleWeatherSocket(w http.ResponseWriter, r *http.Request) {
	var initial *weather.Params
	if params, ok := s.Latest(); ok {
		initial = &params
	}
	s.hub.serve(w, r, initial)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// queryInt reads an integer query parameter, clamped to a sane range.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < 16 {
		v = 16
	}
	if v > 4096 {
		v = 4096
	}
	return v
}
