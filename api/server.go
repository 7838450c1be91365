// Package api provides the HTTP REST API server for divlens.
//
// It exposes per-category data fetches, the full dividend analysis, recent
// headlines, provider health and cache administration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/config"
	"github.com/seenimoa/divlens/internal/news"
	"github.com/seenimoa/divlens/internal/orchestrator"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

// Backend is the data layer the server exposes. *orchestrator.Orchestrator
// implements it.
type Backend interface {
	Fetch(ctx context.Context, req provider.Request) *provider.Result
	Analyze(ctx context.Context, ticker string, period provider.Period, forceRefresh bool) (*models.StockAnalysis, error)
	ProvidersStatus() []provider.ProviderStatus
	CacheStats() cache.Stats
	ClearCache() int
	ClearCacheCategory(c provider.Category) int
	ClearCacheSymbol(symbol string) int
	WarmCache() int
}

// Headlines fetches recent news for a symbol. *news.Client implements it.
type Headlines interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error)
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	backend Backend
	news    Headlines // nil when headlines are disabled
	version string
	log     zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, backend Backend, headlines Headlines, version string, log zerolog.Logger) *Server {
	srv := &Server{
		cfg:     cfg,
		backend: backend,
		news:    headlines,
		version: version,
		log:     log.With().Str("component", "api").Logger(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-done:
	}
	s.log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/providers", s.handleProviders)

		r.Get("/data/{category}/{symbol}", s.handleData)
		r.Get("/analysis/{symbol}", s.handleAnalysis)
		r.Get("/news/{symbol}", s.handleNews)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handleCacheStats)
			r.Delete("/", s.handleClearCache)
			r.Delete("/category/{category}", s.handleClearCacheCategory)
			r.Delete("/symbol/{symbol}", s.handleClearCacheSymbol)
			r.Post("/warm", s.handleWarmCache)
		})

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request with its status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CountResponse reports how many cache entries an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	available := 0
	statuses := s.backend.ProvidersStatus()
	for _, st := range statuses {
		if st.Available {
			available++
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":              "ok",
			"version":             s.version,
			"providers":           len(statuses),
			"providers_available": available,
			"time":                time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.backend.ProvidersStatus()})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	cat, err := provider.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol, err := utils.ValidateTicker(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period, err := provider.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	res := s.backend.Fetch(ctx, provider.Request{Category: cat, Symbol: symbol, Period: period})
	if res.Status == provider.StatusProviderError {
		writeJSON(w, http.StatusServiceUnavailable, APIResponse{Success: false, Data: res, Error: res.Error})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: res.OK(), Data: res})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	period, err := provider.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		if refresh, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	analysis, err := s.backend.Analyze(ctx, chi.URLParam(r, "symbol"), period, refresh)
	if err != nil {
		var invalid *utils.ErrInvalidTicker
		var missing *orchestrator.MissingDataError
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &missing):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.news == nil {
		writeError(w, http.StatusServiceUnavailable, "headlines are disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	items, err := s.news.Headlines(ctx, chi.URLParam(r, "symbol"), limit)
	if err != nil {
		var invalid *utils.ErrInvalidTicker
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, news.ErrDisabled):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.backend.CacheStats()})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.backend.ClearCache()
	s.log.Info().Int("removed", n).Msg("Cache cleared")
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CountResponse{Count: n}})
}

func (s *Server) handleClearCacheCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := provider.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.backend.ClearCacheCategory(cat)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CountResponse{Count: n}})
}

func (s *Server) handleClearCacheSymbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := utils.ValidateTicker(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.backend.ClearCacheSymbol(symbol)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CountResponse{Count: n}})
}

func (s *Server) handleWarmCache(w http.ResponseWriter, r *http.Request) {
	n := s.backend.WarmCache()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CountResponse{Count: n}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
