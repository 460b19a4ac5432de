package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/exports"
	"github.com/VXerys/artconnect-crm-sub001/internal/shared/auth"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
)

type exportsHandler struct {
	store  Store
	jobs   ExportJobs
	signer URLSigner
	logger *zap.Logger
}

var errStorageDisabled = apperrors.Wrap(apperrors.CodeExportFailed,
	errors.New("object storage is not configured"),
	apperrors.WithDetail("object storage is not configured"))

type createExportRequest struct {
	Format string `json:"format"`
}

// create handles POST /artists/{artistId}/reports/{reportId}/exports. The
// job is processed asynchronously.
func (h *exportsHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(h.logger, w, r, errStorageDisabled)
		return
	}
	artistID, reportID, err := scopedIDs(r, "reportId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req createExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	format, err := parseExportFormat(req.Format)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if _, err := h.store.GetReport(r.Context(), artistID, reportID); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	requestedBy := ""
	if actor, ok := auth.ActorFromContext(r.Context()); ok {
		requestedBy = actor.Subject
	}

	job, err := h.jobs.Create(r.Context(), exports.CreateJobRequest{
		ArtistID:    artistID,
		ReportID:    reportID,
		Format:      format,
		RequestedBy: requestedBy,
	})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusAccepted, job)
}

var jobStatuses = map[string]bool{
	domain.JobPending:   true,
	domain.JobRunning:   true,
	domain.JobSucceeded: true,
	domain.JobFailed:    true,
}

// list handles GET /artists/{artistId}/exports?status.
func (h *exportsHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(h.logger, w, r, errStorageDisabled)
		return
	}
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var statusFilter *string
	if raw := r.URL.Query().Get("status"); raw != "" {
		if !jobStatuses[raw] {
			respondError(h.logger, w, r, invalid("status must be one of pending, running, succeeded, failed"))
			return
		}
		statusFilter = &raw
	}

	jobs, err := h.jobs.List(r.Context(), artistID, statusFilter)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.ExportJob{}
	}
	respondJSON(h.logger, w, http.StatusOK, map[string]any{"items": jobs})
}

// get handles GET /artists/{artistId}/exports/{jobId}.
func (h *exportsHandler) get(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(h.logger, w, r, errStorageDisabled)
		return
	}
	artistID, jobID, err := scopedIDs(r, "jobId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	job, err := h.jobs.Get(r.Context(), artistID, jobID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, job)
}

// download handles GET /artists/{artistId}/exports/{jobId}/download by
// redirecting to a freshly presigned URL.
func (h *exportsHandler) download(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.signer == nil {
		respondError(h.logger, w, r, errStorageDisabled)
		return
	}
	artistID, jobID, err := scopedIDs(r, "jobId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	job, err := h.jobs.Get(r.Context(), artistID, jobID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if job.Status != domain.JobSucceeded || job.OutputURI == nil {
		respondError(h.logger, w, r, apperrors.Wrap(apperrors.CodeExportNotReady,
			errors.New("export job is "+job.Status), apperrors.WithDetail("status: "+job.Status)))
		return
	}

	url, err := h.signer.SignedURL(r.Context(), *job.OutputURI)
	if err != nil {
		respondError(h.logger, w, r, apperrors.Wrap(apperrors.CodeExportFailed, err))
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
