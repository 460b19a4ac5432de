package api

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
)

type contactsHandler struct {
	store     Store
	dashboard Dashboard
	logger    *zap.Logger
}

type contactRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Company         string     `json:"company"`
	Category        string     `json:"category"`
	Notes           string     `json:"notes"`
	LastContactedAt *time.Time `json:"lastContactedAt"`
}

func (req contactRequest) toContact() (domain.Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Contact{}, invalid("name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.Contact{}, invalid("email is not a valid address")
		}
	}
	category := domain.CategoryOther
	if req.Category != "" {
		category = domain.ContactCategory(strings.ToLower(strings.TrimSpace(req.Category)))
		if !domain.ValidContactCategory(category) {
			return domain.Contact{}, invalid("category must be one of collector, gallery, curator, partner, other")
		}
	}
	return domain.Contact{
		Name:            name,
		Email:           email,
		Phone:           strings.TrimSpace(req.Phone),
		Company:         strings.TrimSpace(req.Company),
		Category:        category,
		Notes:           req.Notes,
		LastContactedAt: req.LastContactedAt,
	}, nil
}

// list handles GET /artists/{artistId}/contacts?category&q&sort&order&limit.
func (h *contactsHandler) list(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	q := r.URL.Query()
	filter := postgres.ContactFilter{Search: q.Get("q"), Sort: q.Get("sort")}
	if raw := q.Get("category"); raw != "" {
		category := domain.ContactCategory(strings.ToLower(raw))
		if !domain.ValidContactCategory(category) {
			respondError(h.logger, w, r, invalid("category must be one of collector, gallery, curator, partner, other"))
			return
		}
		filter.Category = &category
	}
	if !postgres.ValidContactSort(filter.Sort) {
		respondError(h.logger, w, r, invalid("sort must be one of created_at, name, last_contacted_at"))
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

	contacts, err := h.store.ListContacts(r.Context(), artistID, filter)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	respondJSON(h.logger, w, http.StatusOK, map[string]any{"items": contacts})
}

// get handles GET /artists/{artistId}/contacts/{contactId}.
func (h *contactsHandler) get(w http.ResponseWriter, r *http.Request) {
	artistID, contactID, err := scopedIDs(r, "contactId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	contact, err := h.store.GetContact(r.Context(), artistID, contactID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, contact)
}

// create handles POST /artists/{artistId}/contacts.
func (h *contactsHandler) create(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuidParam(r, "artistId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	contact, err := req.toContact()
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	contact.ArtistID = artistID

	created, err := h.store.CreateContact(r.Context(), contact)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusCreated, created)
}

// update handles PUT /artists/{artistId}/contacts/{contactId}.
func (h *contactsHandler) update(w http.ResponseWriter, r *http.Request) {
	artistID, contactID, err := scopedIDs(r, "contactId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	contact, err := req.toContact()
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	contact.ArtistID = artistID
	contact.ID = contactID

	updated, err := h.store.UpdateContact(r.Context(), contact)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	respondJSON(h.logger, w, http.StatusOK, updated)
}

// delete handles DELETE /artists/{artistId}/contacts/{contactId}.
func (h *contactsHandler) delete(w http.ResponseWriter, r *http.Request) {
	artistID, contactID, err := scopedIDs(r, "contactId")
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	if err := h.store.DeleteContact(r.Context(), artistID, contactID); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.dashboard.Invalidate(r.Context(), artistID)
	w.WriteHeader(http.StatusNoContent)
}
