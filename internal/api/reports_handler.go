package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
)

type reportsHandler struct {
	store     Store
	dashboard Dashboard
	generator ReportGenerator
	logger    *zap.Logger
}

func parseReportType(raw string) (domain.ReportType, error) {
	t := domain.ReportType(strings.ToLower(strings.TrimSpace(raw)))
	if !domain.ValidReportType(t) {
		return "", invalid("type must be one of sales, inventory, network, comprehensive")
	}
	return t, nil
}

// list handles GET /artists/{artistId}/reports?type&limit.
func (h *reportsHandler) list(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var reportType *domain.ReportType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := parseReportType(raw)
		if err != nil {
			respondError(h.logger, w, r, err)
			return
		}
		reportType = &t
	}
	limit, err := limitParam(r)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	items, err := h.store.ListReports(r.Context(), artistID, reportType, limit)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if items == nil {
		items = []domain.Report{}
	}
	respondJSON(h.logger, w, http.StatusOK, map[string]any{"items": items})
}

type generateRequest struct {
	Type        string `json:"type"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// create handles POST /artists/{artistId}/reports. It runs the report
// pipeline synchronously and returns the stored report.
func (h *reportsHandler) create(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	reportType, err := parseReportType(req.Type)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	start, end, err := periodParams(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	report, err := h.generator.Generate(r.Context(), reports.Request{
		ArtistID:    artistID,
		Type:        reportType,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusCreated, report)
}

// get handles GET /artists/{artistId}/reports/{reportId}.
func (h *reportsHandler) get(w http.ResponseWriter, r *http.Request) {
	artistID, reportID, err := scopedIDs(r, "reportId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	report, err := h.store.GetReport(r.Context(), artistID, reportID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, report)
}

// delete handles DELETE /artists/{artistId}/reports/{reportId}.
func (h *reportsHandler) delete(w http.ResponseWriter, r *http.Request) {
	artistID, reportID, err := scopedIDs(r, "reportId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if err := h.store.DeleteReport(r.Context(), artistID, reportID); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	w.WriteHeader(http.StatusNoContent)
}

func parseExportFormat(raw string) (domain.ExportFormat, error) {
	if raw == "" {
		return domain.FormatHTML, nil
	}
	f := domain.ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if !domain.ValidExportFormat(f) {
		return "", invalid("format must be one of html, csv, excel")
	}
	return f, nil
}

// download handles GET /artists/{artistId}/reports/{reportId}/download?format.
// HTML is served inline for printing; CSV flavours are attachments.
func (h *reportsHandler) download(w http.ResponseWriter, r *http.Request) {
	artistID, reportID, err := scopedIDs(r, "reportId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	format, err := parseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	report, err := h.store.GetReport(r.Context(), artistID, reportID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	doc := reports.DocumentFromReport(*report)
	artifact, err := reports.Render(format, doc)
	if err != nil {
		respondError(h.logger, w, r, fmt.Errorf("render %s: %w", format, err))
		return
	}

	disposition := "attachment"
	if format == domain.FormatHTML {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, reports.Filename(doc, format, artifact.Extension)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Body); err != nil {
		h.logger.Warn("failed to write report download", zap.Error(err))
	}
}
