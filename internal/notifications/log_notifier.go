package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for an email provider: it writes the reset token to
// the log. It is the only place a token is ever logged.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, in PasswordResetInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.password_reset",
		"user_id", in.UserID,
		"email", in.Email,
		"token", in.Token,
		"expires_at", in.ExpiresAt,
	)
	return nil
}
