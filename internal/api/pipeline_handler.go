package api

import (
	"errors"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
)

type pipelineHandler struct {
	store     Store
	dashboard Dashboard
	logger    *zap.Logger
}

// board handles GET /artists/{artistId}/pipeline. Every stage is present in
// board order, even when empty.
func (h *pipelineHandler) board(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	items, err := h.store.ListPipeline(r.Context(), artistID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, map[string]any{"columns": BuildColumns(items)})
}

// BuildColumns groups items by stage. Items keep their relative order.
func BuildColumns(items []domain.PipelineItem) []domain.PipelineColumn {
	columns := make([]domain.PipelineColumn, len(domain.Statuses))
	index := make(map[domain.ArtworkStatus]int, len(domain.Statuses))
	for i, st := range domain.Statuses {
		columns[i] = domain.PipelineColumn{Stage: st, Label: st.Label(), Items: []domain.PipelineItem{}}
		index[st] = i
	}
	for _, item := range items {
		i, ok := index[item.Stage]
		if !ok {
			continue
		}
		columns[i].Items = append(columns[i].Items, item)
		columns[i].Total += item.ExpectedValue
	}
	return columns
}

type moveRequest struct {
	Stage    string `json:"stage"`
	Position *int   `json:"position"`
}

// move handles POST /artists/{artistId}/pipeline/{itemId}/move. Without a
// position the card goes to the end of the target column.
func (h *pipelineHandler) move(w http.ResponseWriter, r *http.Request) {
	artistID, itemID, err := scopedIDs(r, "itemId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	stage, err := domain.ParseArtworkStatus(req.Stage)
	if err != nil {
		respondError(h.logger, w, r, apperrors.Wrap(apperrors.CodeInvalidPipeline, err,
			apperrors.WithDetail("stage must be one of concept, in_progress, finished, sold")))
		return
	}
	position := math.MaxInt
	if req.Position != nil {
		if *req.Position < 0 {
			respondError(h.logger, w, r, apperrors.Wrap(apperrors.CodeInvalidPipeline,
				errors.New("negative position"), apperrors.WithDetail("position must not be negative")))
			return
		}
		position = *req.Position
	}

	item, err := h.store.MovePipelineItem(r.Context(), artistID, itemID, stage, position)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusOK, item)
}
