package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTxDB returns a sqlmock database; tests queue Begin/Commit/Rollback expectations on mock.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// sliceCursor serves a fixed result and records the calls it received.
type sliceCursor[T any] struct {
	items  []T
	err    error
	sorted []query.SortField
	skip   int
	limit  int
}

func (c *sliceCursor[T]) Select(...string) query.Cursor[T] { return c }
func (c *sliceCursor[T]) Sort(f ...query.SortField) query.Cursor[T] {
	c.sorted = f
	return c
}
func (c *sliceCursor[T]) Skip(n int) query.Cursor[T]  { c.skip = n; return c }
func (c *sliceCursor[T]) Limit(n int) query.Cursor[T] { c.limit = n; return c }
func (c *sliceCursor[T]) All(context.Context) ([]T, error) {
	return c.items, c.err
}

// MockUserStore mocks store.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Count(ctx context.Context, f query.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockUserStore) Find(f query.Filter) query.Cursor[*domain.User] {
	return m.Called(f).Get(0).(query.Cursor[*domain.User])
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByResetToken(ctx context.Context, hashed string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, hashed, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore { return m }

// MockBootcampStore mocks store.BootcampStore.
type MockBootcampStore struct {
	mock.Mock
}

func (m *MockBootcampStore) Count(ctx context.Context, f query.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockBootcampStore) Find(f query.Filter) query.Cursor[*domain.Bootcamp] {
	return m.Called(f).Get(0).(query.Cursor[*domain.Bootcamp])
}

func (m *MockBootcampStore) Create(ctx context.Context, b *domain.Bootcamp) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBootcampStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bootcamp), args.Error(1)
}

func (m *MockBootcampStore) GetSummaries(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]*domain.BootcampSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.BootcampSummary), args.Error(1)
}

func (m *MockBootcampStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockBootcampStore) WithinRadius(ctx context.Context, lat, lng, miles float64) ([]*domain.Bootcamp, error) {
	args := m.Called(ctx, lat, lng, miles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bootcamp), args.Error(1)
}

func (m *MockBootcampStore) Update(ctx context.Context, b *domain.Bootcamp) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBootcampStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBootcampStore) WithTx(*sql.Tx) store.BootcampStore { return m }

// MockCourseStore mocks store.CourseStore.
type MockCourseStore struct {
	mock.Mock
}

func (m *MockCourseStore) Count(ctx context.Context, f query.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockCourseStore) Find(f query.Filter) query.Cursor[*domain.Course] {
	return m.Called(f).Get(0).(query.Cursor[*domain.Course])
}

func (m *MockCourseStore) Create(ctx context.Context, c *domain.Course) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseStore) ListByBootcamps(ctx context.Context, ids []uuid.UUID) ([]*domain.Course, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Course), args.Error(1)
}

func (m *MockCourseStore) Update(ctx context.Context, c *domain.Course) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourseStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourseStore) RecalculateAverageCost(ctx context.Context, bootcampID uuid.UUID) error {
	return m.Called(ctx, bootcampID).Error(0)
}

func (m *MockCourseStore) WithTx(*sql.Tx) store.CourseStore { return m }

// MockGeocoder mocks service.Geocoder.
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) ([]domain.Location, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Location), args.Error(1)
}

// MockNotifier mocks service.ResetNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPasswordReset(ctx context.Context, user *domain.User, url string) error {
	return m.Called(ctx, user, url).Error(0)
}

// plainHasher "hashes" by prefixing, which keeps assertions readable.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hashed, p string) error {
	if hashed != "hashed:"+p {
		return errMismatch
	}
	return nil
}

var errMismatch = errors.New("password mismatch")

func ptr[T any](v T) *T { return &v }

func publisher() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Pub", Email: "pub@example.com", Role: domain.RolePublisher}
}

func admin() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
}

// sqlExpect chains transaction expectations on a sqlmock.
type sqlExpect struct {
	mock sqlmock.Sqlmock
}

func (e sqlExpect) begin() sqlExpect    { e.mock.ExpectBegin(); return e }
func (e sqlExpect) commit() sqlExpect   { e.mock.ExpectCommit(); return e }
func (e sqlExpect) rollback() sqlExpect { e.mock.ExpectRollback(); return e }
