package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/authz"
	"github.com/phrazzld/devcamper-api/internal/config"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService resolves fixed tokens; every other method is unused here.
type stubAuthService struct {
	service.AuthService
	users map[string]*domain.User
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidToken
}

type stubBootcampService struct {
	service.BootcampService
}

func (stubBootcampService) List(context.Context, map[string]string) (*query.PageResult[*domain.Bootcamp], error) {
	return &query.PageResult[*domain.Bootcamp]{Items: []*domain.Bootcamp{}}, nil
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	enforcer, err := authz.NewEnforcer(logger)
	require.NoError(t, err)

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info", Environment: "production"},
			Auth:   config.AuthConfig{CookieExpireDays: 30},
		},
		logger: logger,
		authService: &stubAuthService{users: map[string]*domain.User{
			"user-token":      {ID: uuid.New(), Role: domain.RoleUser},
			"publisher-token": {ID: uuid.New(), Role: domain.RolePublisher},
		}},
		bootcampService: stubBootcampService{},
		enforcer:        enforcer,
	}
}

func TestRouter(t *testing.T) {
	router := newTestApp(t).setupRouter()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "public list", method: http.MethodGet, path: "/api/v1/bootcamps", want: http.StatusOK},
		{name: "create without token", method: http.MethodPost, path: "/api/v1/bootcamps", want: http.StatusUnauthorized},
		{name: "create as user", method: http.MethodPost, path: "/api/v1/bootcamps", token: "user-token", want: http.StatusForbidden},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/auth/me", token: "forged", want: http.StatusUnauthorized},
		{
			name:   "course update as user",
			method: http.MethodPut,
			path:   "/api/v1/courses/" + uuid.NewString(),
			token:  "user-token",
			want:   http.StatusForbidden,
		},
		{name: "users as publisher", method: http.MethodGet, path: "/api/v1/users", token: "publisher-token", want: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/reviews", want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
		})
	}
}

func TestRouter_ListEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	newTestApp(t).setupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bootcamps/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["data"])
}
