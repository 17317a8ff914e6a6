package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/devcamper-api/internal/api/middleware"
	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service"
)

// CookieOptions controls the token cookie set on sign-in.
type CookieOptions struct {
	ExpireDays int
	Secure     bool
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieOptions
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService service.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		now:         time.Now,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, tokens, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.sendTokens(w, r, http.StatusOK, tokens)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide an email and password")
		return
	}

	_, tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
			shared.WithElevatedLogLevel())
		return
	}

	h.sendTokens(w, r, http.StatusOK, tokens)
}

// RefreshToken handles POST /auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
			shared.WithElevatedLogLevel())
		return
	}

	h.sendTokens(w, r, http.StatusOK, tokens)
}

// Logout handles GET /auth/logout by overwriting the token cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "none",
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
	})
	shared.RespondWithData(w, r, http.StatusOK, struct{}{})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Me(r.Context(), actor.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, user)
}

// UpdateDetails handles PUT /auth/updatedetails.
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.UpdateDetails(r.Context(), actor.ID, req.Name, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, user)
}

// UpdatePassword handles PUT /auth/updatepassword.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, tokens, err := h.authService.UpdatePassword(r.Context(), actor.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.sendTokens(w, r, http.StatusOK, tokens)
}

// ForgotPassword handles POST /auth/forgotpassword.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email, resetURLBase(r)); err != nil {
		message := ""
		if MapErrorToStatusCode(err) == http.StatusInternalServerError {
			message = "Email could not be sent"
		}
		HandleAPIError(w, r, err, message)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Email sent")
}

// ResetPassword handles PUT /auth/resetpassword/{resettoken}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, tokens, err := h.authService.ResetPassword(r.Context(), chi.URLParam(r, "resettoken"), req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.sendTokens(w, r, http.StatusOK, tokens)
}

// sendTokens sets the token cookie and writes the token response.
func (h *AuthHandler) sendTokens(w http.ResponseWriter, r *http.Request, status int, tokens *service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  h.now().Add(time.Duration(h.cookie.ExpireDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	shared.RespondWithJSON(w, r, status, TokenResponse{
		Success:      true,
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func resetURLBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/", scheme, r.Host)
}
