package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brocante/apiserver/internal/services"
	"github.com/brocante/apiserver/internal/store"
)

// OfferHandler provides the listing endpoints: search, single reads,
// and authenticated publishing.
type OfferHandler struct {
	listings *services.ListingService
}

func NewOfferHandler(listings *services.ListingService) *OfferHandler {
	return &OfferHandler{listings: listings}
}

// OfferRouter registers offer routes on the given router.
func OfferRouter(r chi.Router, listings *services.ListingService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewOfferHandler(listings)

	r.Get("/offers", handler.Search)
	r.Get("/offer/{offerID}", handler.Get)
	r.With(authMiddleware).Post("/offer/publish", handler.Publish)
}

// Search serves GET /offers with optional title, priceMin, priceMax,
// sort, page, and limit query parameters.
func (h *OfferHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.listings.Search(r.Context(), searchParams(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get serves GET /offer/{offerID}. A missing offer is an empty
// payload, not an error.
func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "offerID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	offer, err := h.listings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// Publish serves POST /offer/publish: multipart fields plus the
// product picture, owned by the authenticated identity.
func (h *OfferHandler) Publish(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture is required")
		return
	}
	defer file.Close()

	input := services.PublishInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Brand:       r.FormValue("brand"),
		Size:        r.FormValue("size"),
		Condition:   r.FormValue("condition"),
		Color:       r.FormValue("color"),
		City:        r.FormValue("city"),
		Picture:     *uploadFile(file, header),
	}

	offer, err := h.listings.Publish(r.Context(), identity, input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, offer)
}

func searchParams(r *http.Request) store.SearchParams {
	q := r.URL.Query()

	params := store.SearchParams{
		Title: q.Get("title"),
		Sort:  q.Get("sort"),
	}
	// Unparseable numbers are treated as absent.
	if v, err := strconv.ParseFloat(q.Get("priceMin"), 64); err == nil {
		params.PriceMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("priceMax"), 64); err == nil {
		params.PriceMax = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = v
	}
	return params
}
