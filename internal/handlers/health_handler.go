package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MonitorStats exposes the background monitor counters
type MonitorStats interface {
	Ticks() int64
	Failures() int64
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	*BaseHandler
	db      Pinger
	monitor MonitorStats
}

// NewHealthHandler creates a new health handler. monitor may be nil.
func NewHealthHandler(baseHandler *BaseHandler, db Pinger, monitor MonitorStats) *HealthHandler {
	return &HealthHandler{
		BaseHandler: baseHandler,
		db:          db,
		monitor:     monitor,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	MonitorTicks    int64  `json:"monitorTicks"`
	MonitorFailures int64  `json:"monitorFailures"`
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handlerLogger := h.logger.With().Str("handler", "handleHealth").Logger()

	response := HealthResponse{Status: "ok", Database: "ok"}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		handlerLogger.Error().Err(err).Msg("Database ping failed")
		response.Status = "degraded"
		response.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	if h.monitor != nil {
		response.MonitorTicks = h.monitor.Ticks()
		response.MonitorFailures = h.monitor.Failures()
	}

	h.WriteJSON(w, code, response, handlerLogger)
}
