package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/phrazzld/devcamper-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "bootcamps",
		ColumnName:     "name",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"email unique", newPgError("23505", "users_email_key"), store.ErrEmailExists},
		{"bootcamp name unique", newPgError("23505", "bootcamps_name_key"), store.ErrBootcampNameExists},
		{"other unique", newPgError("23505", "something_key"), store.ErrDuplicate},
		{"foreign key", newPgError("23503", "courses_bootcamp_id_fkey"), store.ErrInvalidEntity},
		{"check", newPgError("23514", "courses_weeks_check"), store.ErrInvalidEntity},
		{"not null", newPgError("23502", ""), store.ErrInvalidEntity},
		{"wrapped unique", fmt.Errorf("exec: %w", newPgError("23505", "users_email_key")), store.ErrEmailExists},
		{"unmapped", plain, plain},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, postgres.MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503", "")))
	assert.True(t, postgres.IsCheckConstraintViolation(newPgError("23514", "")))
	assert.True(t, postgres.IsNotNullViolation(fmt.Errorf("wrap: %w", newPgError("23502", ""))))
	assert.False(t, postgres.IsNotNullViolation(errors.New("23502")))
	assert.False(t, postgres.IsUniqueViolation(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrCourseNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrCourseNotFound), store.ErrCourseNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)

	failing := sqlmock.NewErrorResult(errors.New("driver"))
	assert.Error(t, postgres.CheckRowsAffected(failing, nil))
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}
