package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/stats"
)

type dashboardHandler struct {
	dashboard Dashboard
	logger    *zap.Logger
}

// overview handles GET /artists/{artistId}/dashboard.
func (h *dashboardHandler) overview(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	out, err := h.dashboard.Overview(r.Context(), artistID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, out)
}

// analytics handles GET /artists/{artistId}/analytics?start&end. Without a
// period the last six months are used.
func (h *dashboardHandler) analytics(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	q := r.URL.Query()
	start, end, err := periodParams(q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	out, err := h.dashboard.Analytics(r.Context(), artistID, stats.Window{Start: start, End: end})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, out)
}

// reportsOverview handles GET /artists/{artistId}/reports/overview.
func (h *dashboardHandler) reportsOverview(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	out, err := h.dashboard.ReportsOverview(r.Context(), artistID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, out)
}
