package middleware

import (
	"net/http"

	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
)

// Authorizer decides whether a role may perform action on resource.
type Authorizer interface {
	Authorize(role domain.Role, resource, action string) (bool, error)
}

// RequirePermission rejects requests whose authenticated user lacks the
// permission with 403. It must run after AuthMiddleware.Authenticate.
func RequirePermission(authorizer Authorizer, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			allowed, err := authorizer.Authorize(user.Role, resource, action)
			if err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authorization error", err)
				return
			}
			if !allowed {
				shared.RespondWithError(w, r, http.StatusForbidden,
					"User role "+string(user.Role)+" is not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
