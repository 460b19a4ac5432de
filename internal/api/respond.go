package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/exports"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

var statusByCode = map[string]int{
	apperrors.CodeInvalidRequest:  http.StatusBadRequest,
	apperrors.CodeInvalidPipeline: http.StatusUnprocessableEntity,
	apperrors.CodeNotFound:        http.StatusNotFound,
	apperrors.CodeUnauthorized:    http.StatusForbidden,
	apperrors.CodeFetchFailed:     http.StatusServiceUnavailable,
	apperrors.CodeReportFailed:    http.StatusInternalServerError,
	apperrors.CodeAIUnavailable:   http.StatusBadGateway,
	apperrors.CodeAIUnauthorized:  http.StatusBadGateway,
	apperrors.CodeExportNotReady:  http.StatusConflict,
	apperrors.CodeExportFailed:    http.StatusServiceUnavailable,
	apperrors.CodeInternal:        http.StatusInternalServerError,
}

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondError writes err in the shared error schema with its message in the
// caller's language. Store not-found errors become NOT_FOUND; anything
// without a code becomes INTERNAL.
func respondError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	appErr := classify(err)
	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("code", appErr.Code),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}

	lang := apperrors.MatchLanguage(r.Header.Get("Accept-Language"))
	payload := apperrors.New(appErr.Code, apperrors.Localize(appErr.Code, lang),
		apperrors.WithDetail(appErr.Detail),
		apperrors.WithRequestID(middleware.GetReqID(r.Context())),
	)
	if appErr.Code == apperrors.CodeInternal {
		payload.Detail = ""
	}

	respondJSON(logger, w, status, payload)
}

func classify(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, postgres.ErrNotFound) || errors.Is(err, exports.ErrJobNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, err)
	}
	return apperrors.From(err)
}

func invalid(detail string) error {
	return apperrors.Wrap(apperrors.CodeInvalidRequest, errors.New(detail), apperrors.WithDetail(detail))
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, invalid(fmt.Sprintf("%s must be a UUID", name))
	}
	return id, nil
}

// scopedIDs parses the artistId route parameter and one nested resource id.
func scopedIDs(r *http.Request, name string) (uuid.UUID, uuid.UUID, error) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuidParam(r, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return artistID, id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return invalid("invalid request body: " + err.Error())
	}
	return nil
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		return 0, invalid("limit must be an integer between 1 and 100")
	}
	return limit, nil
}

// parseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates. A bare date
// used as an end bound covers that whole day.
func parseDate(raw string, endBound bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endBound {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// periodParams reads an optional start/end pair. Both or neither must be
// present.
func periodParams(startRaw, endRaw string) (time.Time, time.Time, error) {
	if startRaw == "" && endRaw == "" {
		return time.Time{}, time.Time{}, nil
	}
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, invalid("start and end must be given together")
	}
	start, err := parseDate(startRaw, false)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("start must be YYYY-MM-DD or RFC 3339")
	}
	end, err := parseDate(endRaw, true)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("end must be YYYY-MM-DD or RFC 3339")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, invalid("end must be after start")
	}
	return start, end, nil
}
