// Package authz decides which roles may perform which actions, using a casbin
// RBAC model and policy embedded in the binary.
package authz

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/casbin/casbin/v3"
	"github.com/phrazzld/devcamper-api/internal/domain"
)

// Resources guarded by the policy.
const (
	ResourceBootcamps = "bootcamps"
	ResourceCourses   = "courses"
	ResourceUsers     = "users"
)

// Actions granted by the policy.
const (
	ActionWrite  = "write"
	ActionManage = "manage"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

// Enforcer answers role/resource/action questions.
type Enforcer struct {
	enforcer *casbin.Enforcer
	logger   *slog.Logger
}

// NewEnforcer loads the embedded model and policy.
func NewEnforcer(logger *slog.Logger) (*Enforcer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := os.MkdirTemp("", "devcamper-casbin-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create policy directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, fmt.Errorf("failed to write policy files: %w", err)
	}

	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization policy: %w", err)
	}

	return &Enforcer{
		enforcer: e,
		logger:   logger.With(slog.String("component", "authz")),
	}, nil
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

// Authorize reports whether role may perform action on resource.
func (e *Enforcer) Authorize(role domain.Role, resource, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		e.logger.Error("authorization check failed",
			slog.String("error", err.Error()),
			slog.String("role", string(role)),
			slog.String("resource", resource),
			slog.String("action", action))
		return false, err
	}

	e.logger.Debug("authorization decision",
		slog.String("role", string(role)),
		slog.String("resource", resource),
		slog.String("action", action),
		slog.Bool("allowed", allowed))
	return allowed, nil
}
