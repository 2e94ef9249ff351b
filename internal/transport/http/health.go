package http

import (
	"encoding/json"
	"net/http"

	"github.com/pingwatch/connectivity-monitor/pkg/dto"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

// HandleHealthCheck answers 200 with the aggregated report. Unhealthy
// dependencies are part of the body, not of the status code.
func (h *HTTPHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.service.Health(r.Context())
	writeJSON(w, r, http.StatusOK, report)
}

func (h *HTTPHandlers) HandlePing(w http.ResponseWriter, r *http.Request) {
	ping, err := dto.NewPing(h.now())
	if err != nil {
		writeError(w, r, err, "build_ping_response")
		return
	}
	writeJSON(w, r, http.StatusOK, ping)
}

func (h *HTTPHandlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	h.writeProbeStatus(w, r, dto.StatusReady)
}

func (h *HTTPHandlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	h.writeProbeStatus(w, r, dto.StatusAlive)
}

func (h *HTTPHandlers) HandleWatcherHealth(w http.ResponseWriter, r *http.Request) {
	h.writeProbeStatus(w, r, dto.StatusOK)
}

func (h *HTTPHandlers) writeProbeStatus(w http.ResponseWriter, r *http.Request, status string) {
	probe, err := dto.NewProbeStatus(status, h.now())
	if err != nil {
		writeError(w, r, err, "build_probe_status")
		return
	}
	writeJSON(w, r, http.StatusOK, probe)
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.LogError(r.Context(), err, "encode_response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	ctx := r.Context()
	logger.LogError(ctx, err, operation)
	dto.NewErr("internal server error", logger.RequestIDFromContext(ctx)).Write(w, http.StatusInternalServerError)
}
