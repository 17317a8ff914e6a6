package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/platform/logger"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// userSchema exposes the public user fields to the list pipeline. Password
// and reset token columns are read only by the lookups below.
var userSchema = newSchema("users",
	col("id", "id", kindUUID, func(u *domain.User) any { return &u.ID }),
	col("name", "name", kindText, func(u *domain.User) any { return &u.Name }),
	col("email", "email", kindText, func(u *domain.User) any { return &u.Email }),
	col("role", "role", kindText, func(u *domain.User) any { return &u.Role }),
	col("createdAt", "created_at", kindTime, func(u *domain.User) any { return &u.CreatedAt }),
)

const userColumns = `id, name, email, role, hashed_password,
	reset_password_token, reset_password_expire, created_at`

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store on db. If logger is nil, the
// default logger is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Count implements query.Repository.
func (s *PostgresUserStore) Count(ctx context.Context, f query.Filter) (int, error) {
	return count(ctx, s.db, userSchema, f)
}

// Find implements query.Repository.
func (s *PostgresUserStore) Find(f query.Filter) query.Cursor[*domain.User] {
	return newCursor(s.db, userSchema, f)
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, u *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if u.HashedPassword == "" {
		return domain.NewValidationError("password", "must be hashed before storing", domain.ErrInvalidPassword)
	}
	if err := u.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, u.Role, u.HashedPassword, u.CreatedAt)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("email already registered", slog.String("user_id", u.ID.String()))
			return err
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", u.ID.String()))
		return err
	}

	log.Info("user created",
		slog.String("user_id", u.ID.String()),
		slog.String("role", string(u.Role)))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// GetByResetToken implements store.UserStore.GetByResetToken.
func (s *PostgresUserStore) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users
		WHERE reset_password_token = $1 AND reset_password_expire > $2`, hashedToken, now)
}

func (s *PostgresUserStore) getOne(ctx context.Context, sqlStr string, args ...any) (*domain.User, error) {
	var (
		u          domain.User
		resetToken sql.NullString
		resetAt    sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.HashedPassword,
		&resetToken, &resetAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query user",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	u.ResetPasswordToken = resetToken.String
	if resetAt.Valid {
		u.ResetPasswordExpire = &resetAt.Time
	}
	return &u, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, u *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := u.Validate(); err != nil {
		return err
	}

	var resetToken sql.NullString
	if u.ResetPasswordToken != "" {
		resetToken = sql.NullString{String: u.ResetPasswordToken, Valid: true}
	}
	var resetAt sql.NullTime
	if u.ResetPasswordExpire != nil {
		resetAt = sql.NullTime{Time: *u.ResetPasswordExpire, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, role = $3, hashed_password = $4,
			reset_password_token = $5, reset_password_expire = $6
		WHERE id = $7
	`, u.Name, u.Email, u.Role, u.HashedPassword, resetToken, resetAt, u.ID)
	if err != nil {
		err = MapError(err)
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to update user",
				slog.String("error", err.Error()),
				slog.String("user_id", u.ID.String()))
		}
		return err
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated", slog.String("user_id", u.ID.String()))
	return nil
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
