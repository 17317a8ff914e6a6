package auth

import (
	"time"

	"github.com/phrazzld/devcamper-api/internal/config"
)

// NewTestJWTService creates a JWT service with an injectable clock.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	svc, err := newHMACJWTService(config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        int(lifetime / time.Minute),
		RefreshTokenLifetimeMinutes: int(lifetime/time.Minute) * 7,
	}, timeFunc)
	if err != nil {
		panic(err)
	}
	return svc
}
