package main

import (
	"context"
	"log/slog"

	"github.com/phrazzld/devcamper-api/internal/domain"
)

// logNotifier delivers password reset links to the log. The link is only
// emitted at debug level.
type logNotifier struct {
	logger *slog.Logger
}

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger.With("component", "reset_notifier")}
}

// NotifyPasswordReset implements service.ResetNotifier.
func (n *logNotifier) NotifyPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	n.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID.String())
	n.logger.DebugContext(ctx, "password reset link", "user_id", user.ID.String(), "reset_url", resetURL)
	return nil
}
