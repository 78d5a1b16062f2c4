// Package httpapi is the HTTP transport for simapi, structured exactly
// like fleet-service/job-service's internal/handlers: one handler struct
// wrapping a service, RegisterRoutes(*mux.Router), json.NewDecoder/Encoder,
// explicit status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simservice"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/telemetry"
)

// Handler handles HTTP requests for the simulation service.
type Handler struct {
	service *simservice.Service
	feed    *telemetry.Feed
}

// NewHandler creates a new HTTP handler. feed may be nil when
// KINESIS_MOVE_STREAM is unconfigured, in which case GET /feed always
// reports an empty backlog.
func NewHandler(service *simservice.Service, feed *telemetry.Feed) *Handler {
	return &Handler{service: service, feed: feed}
}

// RegisterRoutes sets up HTTP routes.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/runs", h.SubmitRun).Methods("POST")
	router.HandleFunc("/runs", h.ListRuns).Methods("GET")
	router.HandleFunc("/runs/{id}", h.GetRun).Methods("GET")
	router.HandleFunc("/feed", h.Feed).Methods("GET")
}

// Health returns service health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// submitRunRequest is the JSON body POST /runs expects: the payload CSV
// and network/fleet YAML, both carried as embedded text.
type submitRunRequest struct {
	PayloadCSV  string `json:"payload_csv"`
	NetworkYAML string `json:"network_yaml"`
}

// SubmitRun runs a simulation to completion and returns its summary.
func (h *Handler) SubmitRun(w http.ResponseWriter, r *http.Request) {
	var req submitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("httpapi: failed to decode run submission", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	run, err := h.service.SubmitRun(r.Context(), []byte(req.PayloadCSV), []byte(req.NetworkYAML))
	if err != nil {
		slog.Error("httpapi: run submission failed", "error", err)
		if errors.Is(err, simerr.ErrInputInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	slog.Info("httpapi: run completed", "run_id", run.RunID, "delivered_count", run.DeliveredCount)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(run)
}

// GetRun fetches a previously persisted run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// ListRuns lists every persisted run, for a dashboard.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.ListRuns(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// Feed returns the most recent move events ingested off the Kinesis move
// stream, oldest first, for a live-run dashboard.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	events := []telemetry.MoveEvent{}
	if h.feed != nil {
		events = h.feed.Recent()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// CORSMiddleware adds CORS headers for frontend access, identical in
// shape to fleet-service's corsMiddleware.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
