package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// CreateUserInput carries the fields of an account created by an admin.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserService provides the admin user management operations.
type UserService interface {
	// List runs a list request through the query pipeline.
	List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.User], error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// CreateUser creates a user with any role.
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)

	// UpdateUser applies changes to a user. A password change is hashed.
	// Following the pattern of getting the full user first, then updating only the changed fields
	UpdateUser(ctx context.Context, userID uuid.UUID, changes domain.UserChanges) (*domain.User, error)

	// DeleteUser deletes a user by their ID, together with their bootcamps and courses.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	pipeline  query.Pipeline
	logger    *slog.Logger
	db        *sql.DB
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	db *sql.DB,
	pipeline query.Pipeline,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		pipeline:  pipeline,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}
}

// List runs a list request through the query pipeline.
func (s *UserServiceImpl) List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.User], error) {
	page, err := query.Execute(ctx, s.pipeline, raw, s.userStore)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, NewServiceError("user", "list", err)
	}
	return page, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, NewServiceError("user", "get", err)
	}

	s.logger.Debug("retrieved user successfully", "user_id", userID)
	return user, nil
}

// CreateUser creates a user with any role.
func (s *UserServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	if err := hashPassword(s.hasher, user); err != nil {
		return nil, NewServiceError("user", "create", err)
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to create user with existing email",
				"email", user.Email)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"email", user.Email)
		}
		return nil, NewServiceError("user", "create", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"role", user.Role)
	return user, nil
}

// UpdateUser applies changes to a user inside a transaction.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	changes domain.UserChanges,
) (*domain.User, error) {
	var user *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		var err error
		user, err = txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		changes.Apply(user)
		if err := user.Validate(); err != nil {
			return err
		}
		if changes.Password != nil {
			if err := hashPassword(s.hasher, user); err != nil {
				return err
			}
		}
		return txStore.Update(ctx, user)
	})
	if err != nil {
		s.logger.Debug("user update failed",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("user", "update", err)
	}

	s.logger.Info("user updated successfully", "user_id", userID)
	return user, nil
}

// DeleteUser deletes a user by their ID
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to delete user",
				"error", err,
				"user_id", userID)
		}
		return NewServiceError("user", "delete", err)
	}

	s.logger.Info("user deleted successfully", "user_id", userID)
	return nil
}
