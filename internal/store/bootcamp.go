package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
)

// BootcampStore defines the interface for bootcamp data persistence.
type BootcampStore interface {
	query.Repository[*domain.Bootcamp]

	// Create saves a new bootcamp.
	// Returns ErrBootcampNameExists if the name is taken.
	Create(ctx context.Context, bootcamp *domain.Bootcamp) error

	// GetByID retrieves a bootcamp without its courses.
	// Returns ErrBootcampNotFound if the bootcamp does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error)

	// GetSummaries returns the summaries of the given bootcamps keyed by ID.
	// Unknown IDs are absent from the result.
	GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.BootcampSummary, error)

	// CountByUser returns how many bootcamps userID owns.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithinRadius returns the bootcamps whose location lies within miles
	// of the given point, nearest first.
	WithinRadius(ctx context.Context, lat, lng, miles float64) ([]*domain.Bootcamp, error)

	// Update writes every mutable field of the bootcamp.
	// Returns ErrBootcampNotFound if the bootcamp does not exist.
	Update(ctx context.Context, bootcamp *domain.Bootcamp) error

	// Delete removes a bootcamp and its courses.
	// Returns ErrBootcampNotFound if the bootcamp does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a BootcampStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) BootcampStore
}
