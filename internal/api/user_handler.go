package api

import (
	"net/http"

	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service"
)

// UserHandler handles the admin-only /users routes.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.userService.List(r.Context(), shared.QueryParams(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithPage(w, r, page)
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "User")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, user)
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), service.CreateUserInput{
		Name:     deref(req.Name),
		Email:    deref(req.Email),
		Password: deref(req.Password),
		Role:     domain.Role(deref(req.Role)),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, user)
}

// UpdateUser handles PUT /users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "User")
	if !ok {
		return
	}
	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, req.ToChanges())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "User")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, struct{}{})
}
