package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service"
)

// BootcampHandler handles the /bootcamps routes.
type BootcampHandler struct {
	bootcampService service.BootcampService
}

// NewBootcampHandler creates a new BootcampHandler.
func NewBootcampHandler(bootcampService service.BootcampService) *BootcampHandler {
	return &BootcampHandler{bootcampService: bootcampService}
}

// radiusResponse is the envelope of the radius search; it has no pagination.
type radiusResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Data    []*domain.Bootcamp `json:"data"`
}

// ListBootcamps handles GET /bootcamps.
func (h *BootcampHandler) ListBootcamps(w http.ResponseWriter, r *http.Request) {
	page, err := h.bootcampService.List(r.Context(), shared.QueryParams(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithPage(w, r, page)
}

// GetBootcamp handles GET /bootcamps/{id}.
func (h *BootcampHandler) GetBootcamp(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "Bootcamp")
	if !ok {
		return
	}

	bootcamp, err := h.bootcampService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, bootcamp)
}

// CreateBootcamp handles POST /bootcamps.
func (h *BootcampHandler) CreateBootcamp(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req BootcampRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bootcamp, err := h.bootcampService.Create(r.Context(), actor, req.ToBootcamp())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, bootcamp)
}

// UpdateBootcamp handles PUT /bootcamps/{id}.
func (h *BootcampHandler) UpdateBootcamp(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "Bootcamp")
	if !ok {
		return
	}
	var req BootcampRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bootcamp, err := h.bootcampService.Update(r.Context(), actor, id, req.ToChanges())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, bootcamp)
}

// DeleteBootcamp handles DELETE /bootcamps/{id}.
func (h *BootcampHandler) DeleteBootcamp(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "Bootcamp")
	if !ok {
		return
	}

	if err := h.bootcampService.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, struct{}{})
}

// BootcampsInRadius handles GET /bootcamps/radius/{zipcode}/{distance}.
func (h *BootcampHandler) BootcampsInRadius(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Distance must be a number")
		return
	}

	bootcamps, err := h.bootcampService.WithinRadius(r.Context(), chi.URLParam(r, "zipcode"), distance)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, radiusResponse{
		Success: true,
		Count:   len(bootcamps),
		Data:    bootcamps,
	})
}
