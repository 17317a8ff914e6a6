package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
)

// CourseStore defines the interface for course data persistence.
type CourseStore interface {
	query.Repository[*domain.Course]

	// Create saves a new course.
	// Returns ErrInvalidEntity if the bootcamp does not exist.
	Create(ctx context.Context, course *domain.Course) error

	// GetByID retrieves a course.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// ListByBootcamps returns the courses of the given bootcamps, oldest first.
	ListByBootcamps(ctx context.Context, bootcampIDs []uuid.UUID) ([]*domain.Course, error)

	// Update writes every mutable field of the course.
	// Returns ErrCourseNotFound if the course does not exist.
	Update(ctx context.Context, course *domain.Course) error

	// Delete removes a course.
	// Returns ErrCourseNotFound if the course does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// RecalculateAverageCost stores the rounded mean tuition of a bootcamp's
	// courses on the bootcamp, or NULL when it has none.
	RecalculateAverageCost(ctx context.Context, bootcampID uuid.UUID) error

	// WithTx returns a CourseStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) CourseStore
}
