package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, in)
	return userArg(args, 0), tokensArg(args, 1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return userArg(args, 0), tokensArg(args, 1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return tokensArg(args, 0), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, accessToken)
	return userArg(args, 0), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

func (m *MockAuthService) UpdateDetails(ctx context.Context, userID uuid.UUID, name, email *string) (*domain.User, error) {
	args := m.Called(ctx, userID, name, email)
	return userArg(args, 0), args.Error(1)
}

func (m *MockAuthService) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, next string,
) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, userID, current, next)
	return userArg(args, 0), tokensArg(args, 1), args.Error(2)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	return m.Called(ctx, email, resetURLBase).Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, token, password)
	return userArg(args, 0), tokensArg(args, 1), args.Error(2)
}

type MockBootcampService struct{ mock.Mock }

func (m *MockBootcampService) List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.Bootcamp], error) {
	args := m.Called(ctx, raw)
	page, _ := args.Get(0).(*query.PageResult[*domain.Bootcamp])
	return page, args.Error(1)
}

func (m *MockBootcampService) Get(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Bootcamp)
	return b, args.Error(1)
}

func (m *MockBootcampService) Create(ctx context.Context, actor *domain.User, in domain.Bootcamp) (*domain.Bootcamp, error) {
	args := m.Called(ctx, actor, in)
	b, _ := args.Get(0).(*domain.Bootcamp)
	return b, args.Error(1)
}

func (m *MockBootcampService) Update(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	changes domain.BootcampChanges,
) (*domain.Bootcamp, error) {
	args := m.Called(ctx, actor, id, changes)
	b, _ := args.Get(0).(*domain.Bootcamp)
	return b, args.Error(1)
}

func (m *MockBootcampService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockBootcampService) WithinRadius(ctx context.Context, zipcode string, miles float64) ([]*domain.Bootcamp, error) {
	args := m.Called(ctx, zipcode, miles)
	bs, _ := args.Get(0).([]*domain.Bootcamp)
	return bs, args.Error(1)
}

type MockCourseService struct{ mock.Mock }

func (m *MockCourseService) List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.Course], error) {
	args := m.Called(ctx, raw)
	page, _ := args.Get(0).(*query.PageResult[*domain.Course])
	return page, args.Error(1)
}

func (m *MockCourseService) ListForBootcamp(ctx context.Context, bootcampID uuid.UUID) ([]*domain.Course, error) {
	args := m.Called(ctx, bootcampID)
	cs, _ := args.Get(0).([]*domain.Course)
	return cs, args.Error(1)
}

func (m *MockCourseService) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Course)
	return c, args.Error(1)
}

func (m *MockCourseService) Add(ctx context.Context, actor *domain.User, bootcampID uuid.UUID, in domain.Course) (*domain.Course, error) {
	args := m.Called(ctx, actor, bootcampID, in)
	c, _ := args.Get(0).(*domain.Course)
	return c, args.Error(1)
}

func (m *MockCourseService) Update(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	changes domain.CourseChanges,
) (*domain.Course, error) {
	args := m.Called(ctx, actor, id, changes)
	c, _ := args.Get(0).(*domain.Course)
	return c, args.Error(1)
}

func (m *MockCourseService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.User], error) {
	args := m.Called(ctx, raw)
	page, _ := args.Get(0).(*query.PageResult[*domain.User])
	return page, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID uuid.UUID, changes domain.UserChanges) (*domain.User, error) {
	args := m.Called(ctx, userID, changes)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func userArg(args mock.Arguments, i int) *domain.User {
	u, _ := args.Get(i).(*domain.User)
	return u
}

func tokensArg(args mock.Arguments, i int) *service.TokenPair {
	t, _ := args.Get(i).(*service.TokenPair)
	return t
}

// newJSONRequest builds a request with an optional JSON body and signed-in user.
func newJSONRequest(t *testing.T, method, target string, body any, user *domain.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(shared.WithUser(req.Context(), user))
	}
	return req
}

// decodeBody unmarshals a recorded response into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func testPublisher() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Publisher", Email: "pub@example.com", Role: domain.RolePublisher}
}

func ptr[T any](v T) *T { return &v }
