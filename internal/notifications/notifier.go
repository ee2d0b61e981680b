package notifications

import (
	"context"
	"time"
)

type PasswordResetInput struct {
	UserID    int64
	Email     string
	Token     string
	ExpiresAt time.Time
}

// ResetDelivery gets a freshly issued reset token to its owner.
type ResetDelivery interface {
	SendPasswordReset(ctx context.Context, input PasswordResetInput) error
}
