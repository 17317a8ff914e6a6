package auth

import (
	"context"

	"github.com/google/uuid"
)

// MockJWTService is a JWTService whose behavior is set per test through
// function fields. Nil fields return zero values.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, token string) (*Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, token string) (*Claims, error)
}

var _ JWTService = (*MockJWTService)(nil)

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn == nil {
		return "access-" + userID.String(), nil
	}
	return m.GenerateTokenFn(ctx, userID)
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if m.ValidateTokenFn == nil {
		return nil, ErrInvalidToken
	}
	return m.ValidateTokenFn(ctx, token)
}

// GenerateRefreshToken implements JWTService.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn == nil {
		return "refresh-" + userID.String(), nil
	}
	return m.GenerateRefreshTokenFn(ctx, userID)
}

// ValidateRefreshToken implements JWTService.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*Claims, error) {
	if m.ValidateRefreshTokenFn == nil {
		return nil, ErrInvalidRefreshToken
	}
	return m.ValidateRefreshTokenFn(ctx, token)
}
