package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// TokenPair is the credential set handed to a client after authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the fields of a self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// ResetNotifier delivers a password reset link to a user.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
}

// AuthService covers registration, login and the account self-service operations.
type AuthService interface {
	// Register creates a user or publisher account and signs it in.
	// Returns ErrRoleNotAllowed for any other role.
	Register(ctx context.Context, in RegisterInput) (*domain.User, *TokenPair, error)

	// Login checks credentials and issues tokens.
	// Returns ErrInvalidCredentials for an unknown email or a wrong password.
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Authenticate resolves an access token to the user it was issued for.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)

	// Me returns the user with the given ID.
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateDetails changes the name and email of a user.
	UpdateDetails(ctx context.Context, userID uuid.UUID, name, email *string) (*domain.User, error)

	// UpdatePassword replaces the password after checking the current one
	// and issues fresh tokens. Returns ErrIncorrectPassword on mismatch.
	UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) (*domain.User, *TokenPair, error)

	// ForgotPassword stores a reset token for the user and notifies them
	// with resetURLBase followed by the token.
	ForgotPassword(ctx context.Context, email, resetURLBase string) error

	// ResetPassword sets a new password using a reset token and signs the user in.
	// Returns ErrInvalidResetToken for an unknown or expired token.
	ResetPassword(ctx context.Context, token, password string) (*domain.User, *TokenPair, error)
}

type authServiceImpl struct {
	users    store.UserStore
	db       *sql.DB
	tokens   auth.JWTService
	verifier auth.PasswordVerifier
	hasher   auth.PasswordHasher
	notifier ResetNotifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. Every dependency except logger is required.
func NewAuthService(
	users store.UserStore,
	db *sql.DB,
	tokens auth.JWTService,
	verifier auth.PasswordVerifier,
	hasher auth.PasswordHasher,
	notifier ResetNotifier,
	logger *slog.Logger,
) (AuthService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil || hasher == nil {
		return nil, domain.NewValidationError("passwords", "cannot be nil", domain.ErrValidation)
	}
	if notifier == nil {
		return nil, domain.NewValidationError("notifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authServiceImpl{
		users:    users,
		db:       db,
		tokens:   tokens,
		verifier: verifier,
		hasher:   hasher,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, *TokenPair, error) {
	if in.Role != "" && in.Role != domain.RoleUser && in.Role != domain.RolePublisher {
		return nil, nil, ErrRoleNotAllowed
	}

	user, err := domain.NewUser(in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, nil, err
	}
	if err := hashPassword(s.hasher, user); err != nil {
		return nil, nil, NewServiceError("auth", "register", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("registration with existing email", slog.String("email", user.Email))
		} else {
			s.logger.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, nil, NewServiceError("auth", "register", err)
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, NewServiceError("auth", "register", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, pair, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, domain.NewValidationError("credentials", "please provide an email and password", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, NewServiceError("auth", "login", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch on login", slog.String("user_id", user.ID.String()))
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, NewServiceError("auth", "login", err)
	}
	return user, pair, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	// The account may have been deleted since the token was issued.
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, NewServiceError("auth", "refresh", err)
	}
	pair, err := s.issue(ctx, claims.UserID)
	if err != nil {
		return nil, NewServiceError("auth", "refresh", err)
	}
	return pair, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, auth.ErrMissingToken
	}
	claims, err := s.tokens.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, NewServiceError("auth", "authenticate", err)
	}
	return user, nil
}

func (s *authServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("auth", "me", err)
	}
	return user, nil
}

func (s *authServiceImpl) UpdateDetails(
	ctx context.Context,
	userID uuid.UUID,
	name, email *string,
) (*domain.User, error) {
	var user *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		var err error
		user, err = users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		domain.UserChanges{Name: name, Email: email}.Apply(user)
		if err := user.Validate(); err != nil {
			return err
		}
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, NewServiceError("auth", "update details", err)
	}
	return user, nil
}

func (s *authServiceImpl) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, next string,
) (*domain.User, *TokenPair, error) {
	var user *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		var err error
		user, err = users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.verifier.Compare(user.HashedPassword, current); err != nil {
			return ErrIncorrectPassword
		}
		if err := s.setPassword(user, next); err != nil {
			return err
		}
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, nil, NewServiceError("auth", "update password", err)
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, NewServiceError("auth", "update password", err)
	}
	s.logger.Info("password changed", slog.String("user_id", user.ID.String()))
	return user, pair, nil
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return NewServiceError("auth", "forgot password", err)
	}

	token, hashed, err := auth.NewResetToken()
	if err != nil {
		return NewServiceError("auth", "forgot password", err)
	}
	expires := s.now().Add(auth.ResetTokenLifetime)
	user.ResetPasswordToken = hashed
	user.ResetPasswordExpire = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return NewServiceError("auth", "forgot password", err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, user, resetURLBase+token); err != nil {
		s.logger.Error("failed to deliver password reset",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))

		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if clearErr := s.users.Update(ctx, user); clearErr != nil {
			s.logger.Error("failed to clear reset token",
				slog.String("error", clearErr.Error()),
				slog.String("user_id", user.ID.String()))
		}
		return NewServiceError("auth", "forgot password", err)
	}
	return nil
}

func (s *authServiceImpl) ResetPassword(
	ctx context.Context,
	token, password string,
) (*domain.User, *TokenPair, error) {
	hashed := auth.HashResetToken(token)
	now := s.now()

	var user *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		var err error
		user, err = users.GetByResetToken(ctx, hashed, now)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if !user.ResetTokenValid(hashed, now) {
			return ErrInvalidResetToken
		}
		if err := s.setPassword(user, password); err != nil {
			return err
		}
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, nil, NewServiceError("auth", "reset password", err)
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, NewServiceError("auth", "reset password", err)
	}
	return user, pair, nil
}

func (s *authServiceImpl) setPassword(user *domain.User, password string) error {
	domain.UserChanges{Password: &password}.Apply(user)
	if err := user.Validate(); err != nil {
		return err
	}
	return hashPassword(s.hasher, user)
}

func (s *authServiceImpl) issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashPassword replaces the plaintext password of user with its hash.
func hashPassword(hasher auth.PasswordHasher, user *domain.User) error {
	if user.Password == "" {
		return domain.NewValidationError("password", "is required", domain.ErrInvalidPassword)
	}
	hashed, err := hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.Password = ""
	return nil
}
