package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// pathUUID is getPathUUID that writes the error response itself.
// A malformed ID names no existing resource, so it is reported as 404.
func pathUUID(w http.ResponseWriter, r *http.Request, paramName, resource string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, resource+" not found with id of "+chi.URLParam(r, paramName))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Not authorized to access this route")
		return nil, false
	}
	return user, true
}

// decodeAndValidate parses the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// HandleAPIError writes the response for a service error. An empty message
// selects the safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// respondWithPage writes a pipeline result, projecting the items to the
// selected fields.
func respondWithPage[T any](w http.ResponseWriter, r *http.Request, page *query.PageResult[T]) {
	data, err := query.Project(page.Items, page.Options.Select)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithList(w, r, page.Count, page.Pagination, data)
}
