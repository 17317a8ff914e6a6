package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	query.Repository[*domain.User]

	// Create saves a new user. The user must carry a HashedPassword.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address (case-insensitive).
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetToken retrieves the user holding an unexpired hashed reset token.
	// Returns ErrUserNotFound if no such user exists.
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error)

	// Update writes name, email, role, hashed password and reset token fields.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
