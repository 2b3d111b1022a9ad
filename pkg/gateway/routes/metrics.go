package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

type healthResponse struct {
	Status         string `json:"status"`
	CareerAPI      string `json:"careerApi"`
	ActiveSessions int    `json:"activeSessions"`
}

// SessionCounter reports how many workspaces are live.
type SessionCounter interface {
	Len() int
}

type MetricsHandler struct {
	sessions   SessionCounter
	configured bool
}

func NewMetricsHandler(sessions SessionCounter, configured bool) *MetricsHandler {
	return &MetricsHandler{sessions: sessions, configured: configured}
}

func (h *MetricsHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
}

func (h *MetricsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", CareerAPI: "configured"}
	if !h.configured {
		resp.CareerAPI = "not_configured"
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.Len()
	}
	writeJSON(w, resp)
}

func (h *MetricsHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		metrics.SetActiveSessions(h.sessions.Len())
	}
	metrics.WritePrometheus(w)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}
