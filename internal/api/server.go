// Package api provides the read-mostly HTTP surface of the oracle.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"RenewraOracle/internal/logger"
	"RenewraOracle/internal/model"
	"RenewraOracle/internal/nav"
)

// TriggerAPI marks journal entries caused by HTTP requests.
const TriggerAPI = "API"

// Operations are the state-changing oracle actions. *scheduler.Scheduler
// satisfies it so API calls are logged, recorded and counted like scheduled ones.
type Operations interface {
	Simulate(trigger string, months int) []*model.SimulationSummary
	Reload(trigger string) (*model.Portfolio, error)
}

// Server is the oracle HTTP API server.
type Server struct {
	engine         *nav.Engine
	ops            Operations
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(engine *nav.Engine, ops Operations) *Server {
	return &Server{engine: engine, ops: ops}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/projects", s.handleProjects)
		r.Get("/projects/{id}", s.handleProject)
		r.Get("/nav", s.handleNav)
		r.Get("/fund", s.handleFund)
		r.Get("/prices", s.handlePrices)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/reload", s.handleReload)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// corsMiddleware allows any origin; the API is public and read-mostly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d (%v) [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
