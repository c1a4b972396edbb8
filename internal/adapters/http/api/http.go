// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/salaryqa/internal/app"
	"github.com/okian/salaryqa/internal/domain/duplicate"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultMaxReanalyzeLimit = 1000
	maxBodyBytes             = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EntryDependencies
	AdminDependencies
	StatsProvider
}

// EntryDependencies covers submission, lookup and dry-run analysis.
type EntryDependencies interface {
	Submit(ctx context.Context, e model.Entry) (service.Report, error)
	Analyze(ctx context.Context, e model.Entry) service.Report
	Get(ctx context.Context, id string) (model.Entry, error)
	FindDuplicates(ctx context.Context, id string) ([]duplicate.Match, error)
}

// AdminDependencies covers maintenance operations.
type AdminDependencies interface {
	BatchAnalyze(ctx context.Context, limit int) (service.BatchReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	entriesHandler *EntriesHandler
	adminHandler   *AdminHandler
}

// NewServer creates a new API server with all handlers. maxReanalyzeLimit
// caps the limit accepted by the re-analysis endpoint; 0 uses the default.
func NewServer(deps Dependencies, maxReanalyzeLimit int) *Server {
	if maxReanalyzeLimit <= 0 {
		maxReanalyzeLimit = defaultMaxReanalyzeLimit
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		entriesHandler: NewEntriesHandler(deps),
		adminHandler:   NewAdminHandler(deps, maxReanalyzeLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /entries", MetricsMiddleware(s.entriesHandler.HandleSubmit, "entries_submit"))
	mux.HandleFunc("POST /entries/analyze", MetricsMiddleware(s.entriesHandler.HandleAnalyze, "entries_analyze"))
	mux.HandleFunc("GET /entries/{id}", MetricsMiddleware(s.entriesHandler.HandleGet, "entries_get"))
	mux.HandleFunc("GET /entries/{id}/duplicates", MetricsMiddleware(s.entriesHandler.HandleDuplicates, "entries_duplicates"))

	mux.HandleFunc("POST /admin/reanalyze", MetricsMiddleware(s.adminHandler.HandleReanalyze, "admin_reanalyze"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError maps not-found errors to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, err error) {
	if service.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
