package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

type artworksHandler struct {
	store     Store
	dashboard Dashboard
	logger    *zap.Logger
}

type artworkRequest struct {
	Title       string   `json:"title"`
	Medium      string   `json:"medium"`
	Dimensions  string   `json:"dimensions"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Price       float64  `json:"price"`
	Status      string   `json:"status"`
	SoldPrice   *float64 `json:"soldPrice"`
}

func (req artworkRequest) toArtwork() (domain.Artwork, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Artwork{}, invalid("title is required")
	}
	if req.Price < 0 {
		return domain.Artwork{}, invalid("price must not be negative")
	}
	if req.SoldPrice != nil && *req.SoldPrice < 0 {
		return domain.Artwork{}, invalid("soldPrice must not be negative")
	}
	if req.Year < 0 || req.Year > 9999 {
		return domain.Artwork{}, invalid("year is out of range")
	}

	status := domain.StatusConcept
	if req.Status != "" {
		parsed, err := domain.ParseArtworkStatus(req.Status)
		if err != nil {
			return domain.Artwork{}, invalid("status must be one of concept, in_progress, finished, sold")
		}
		status = parsed
	}

	return domain.Artwork{
		Title:       title,
		Medium:      strings.TrimSpace(req.Medium),
		Dimensions:  strings.TrimSpace(req.Dimensions),
		Year:        req.Year,
		Description: req.Description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Price:       req.Price,
		Status:      status,
		SoldPrice:   req.SoldPrice,
	}, nil
}

// list handles GET /artists/{artistId}/artworks?status&q&sort&order&limit.
func (h *artworksHandler) list(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	q := r.URL.Query()
	filter := postgres.ArtworkFilter{Search: q.Get("q"), Sort: q.Get("sort")}
	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseArtworkStatus(raw)
		if err != nil {
			respondError(h.logger, w, r, invalid("status must be one of concept, in_progress, finished, sold"))
			return
		}
		filter.Status = &status
	}
	if !postgres.ValidArtworkSort(filter.Sort) {
		respondError(h.logger, w, r, invalid("sort must be one of created_at, price, views, title"))
		return
	}
	if filter.Order, err = postgres.ParseOrder(q.Get("order")); err != nil {
		respondError(h.logger, w, r, invalid("order must be asc or desc"))
		return
	}
	if filter.Limit, err = limitParam(r); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	artworks, err := h.store.ListArtworks(r.Context(), artistID, filter)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if artworks == nil {
		artworks = []domain.Artwork{}
	}
	respondJSON(h.logger, w, http.StatusOK, map[string]any{"items": artworks})
}

// get handles GET /artists/{artistId}/artworks/{artworkId}.
func (h *artworksHandler) get(w http.ResponseWriter, r *http.Request) {
	artistID, artworkID, err := scopedIDs(r, "artworkId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	artwork, err := h.store.GetArtwork(r.Context(), artistID, artworkID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, artwork)
}

// create handles POST /artists/{artistId}/artworks.
func (h *artworksHandler) create(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req artworkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	artwork, err := req.toArtwork()
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	artwork.ArtistID = artistID

	created, err := h.store.CreateArtwork(r.Context(), artwork)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusCreated, created)
}

// update handles PUT /artists/{artistId}/artworks/{artworkId}.
func (h *artworksHandler) update(w http.ResponseWriter, r *http.Request) {
	artistID, artworkID, err := scopedIDs(r, "artworkId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req artworkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	artwork, err := req.toArtwork()
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	artwork.ArtistID = artistID
	artwork.ID = artworkID

	updated, err := h.store.UpdateArtwork(r.Context(), artwork)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusOK, updated)
}

// delete handles DELETE /artists/{artistId}/artworks/{artworkId}.
func (h *artworksHandler) delete(w http.ResponseWriter, r *http.Request) {
	artistID, artworkID, err := scopedIDs(r, "artworkId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if err := h.store.DeleteArtwork(r.Context(), artistID, artworkID); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	w.WriteHeader(http.StatusNoContent)
}
