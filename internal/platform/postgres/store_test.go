package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var courseColumns = []string{
	"id", "bootcamp_id", "user_id", "title", "description", "weeks",
	"tuition", "minimum_skill", "scholarship_available", "created_at",
}

func newMock(t *testing.T) (sqlmock.Sqlmock, *postgres.PostgresCourseStore, *postgres.PostgresBootcampStore, *postgres.PostgresUserStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock,
		postgres.NewPostgresCourseStore(db, nil),
		postgres.NewPostgresBootcampStore(db, nil),
		postgres.NewPostgresUserStore(db, nil)
}

func courseRow(id, bootcampID uuid.UUID, title string, tuition float64) []driver.Value {
	return []driver.Value{
		id.String(), bootcampID.String(), uuid.NewString(), title, "desc",
		int64(8), tuition, "beginner", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCourseStoreRunsPipeline(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	bootcampID := uuid.New()
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM courses WHERE (tuition > $1)`)).
		WithArgs(1000.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM courses WHERE (tuition > $1) ORDER BY tuition ASC, id ASC LIMIT 2 OFFSET 2`)).
		WithArgs(1000.0).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow(courseRow(first, bootcampID, "Front End", 8000)...).
			AddRow(courseRow(second, bootcampID, "Full Stack", 10000)...))

	raw := map[string]string{"tuition[gt]": "1000", "sort": "tuition", "page": "2", "limit": "2"}
	res, err := query.Execute[*domain.Course](context.Background(), query.Pipeline{}, raw, courses)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalMatching)
	require.Len(t, res.Items, 2)
	assert.Equal(t, first, res.Items[0].ID)
	assert.Equal(t, domain.SkillBeginner, res.Items[0].MinimumSkill)
	assert.Equal(t, 8, res.Items[0].Weeks)
	assert.Nil(t, res.Pagination.Next)
	assert.Equal(t, &query.PageRef{Page: 1, Limit: 2}, res.Pagination.Prev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreInvalidFilterSkipsDatabase(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	raw := map[string]string{"tuition[gt]": "lots"}

	_, err := query.Execute[*domain.Course](context.Background(), query.Pipeline{}, raw, courses)
	assert.ErrorIs(t, err, store.ErrInvalidFilter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreGetByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM courses WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(courseColumns))

	_, err := courses.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreDelete(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, courses.Delete(context.Background(), id))
	assert.ErrorIs(t, courses.Delete(context.Background(), id), store.ErrCourseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreCreateUnknownBootcamp(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	c, err := domain.NewCourse(uuid.New(), uuid.New(), domain.Course{
		Title: "Data Science", Description: "Python", Weeks: 10, Tuition: 12000,
		MinimumSkill: domain.SkillIntermediate,
	})
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO courses`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "courses_bootcamp_id_fkey"})

	err = courses.Create(context.Background(), c)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreRecalculateAverageCost(t *testing.T) {
	t.Parallel()

	mock, courses, _, _ := newMock(t)
	bootcampID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT CEIL(AVG(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = $1`)).
		WithArgs(bootcampID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, courses.RecalculateAverageCost(context.Background(), bootcampID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampStoreGetSummaries(t *testing.T) {
	t.Parallel()

	mock, _, bootcamps, _ := newMock(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, description FROM bootcamps WHERE id IN ($1,$2)`)).
		WithArgs(a.String(), b.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(a.String(), "Devworks", "Web"))

	got, err := bootcamps.GetSummaries(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Devworks", got[a].Name)

	empty, err := bootcamps.GetSummaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampStoreCountByUser(t *testing.T) {
	t.Parallel()

	mock, _, bootcamps, _ := newMock(t)
	owner := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bootcamps WHERE user_id = $1`)).
		WithArgs(owner.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := bootcamps.CountByUser(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampStoreWithinRadiusArguments(t *testing.T) {
	t.Parallel()

	mock, _, bootcamps, _ := newMock(t)
	mock.ExpectQuery(`FROM bootcamps WHERE location_latitude IS NOT NULL`).
		WithArgs(42.35, 42.35, -71.1, 10.0, 42.35, 42.35, -71.1).
		WillReturnError(errors.New("connection refused"))

	_, err := bootcamps.WithinRadius(context.Background(), 42.35, -71.1, 10)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByEmail(t *testing.T) {
	t.Parallel()

	mock, _, _, users := newMock(t)
	id := uuid.New()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "role", "hashed_password",
			"reset_password_token", "reset_password_expire", "created_at",
		}).AddRow(id.String(), "Jane", "jane@example.com", "publisher", "$2a$10$hash", nil, nil, created))
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := users.GetByEmail(context.Background(), "  Jane@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, domain.RolePublisher, u.Role)
	assert.Equal(t, "$2a$10$hash", u.HashedPassword)
	assert.Empty(t, u.ResetPasswordToken)
	assert.Nil(t, u.ResetPasswordExpire)

	_, err = users.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, _, _, users := newMock(t)
	u, err := domain.NewUser("Jane", "jane@example.com", "secret123", domain.RoleUser)
	require.NoError(t, err)
	u.HashedPassword = "$2a$10$hash"

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err = users.Create(context.Background(), u)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreateRequiresHash(t *testing.T) {
	t.Parallel()

	mock, _, _, users := newMock(t)
	u, err := domain.NewUser("Jane", "jane@example.com", "secret123", domain.RoleUser)
	require.NoError(t, err)

	err = users.Create(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoresPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { postgres.NewPostgresUserStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresBootcampStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresCourseStore(nil, nil) })
}
