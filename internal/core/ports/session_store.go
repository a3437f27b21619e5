package ports

import (
	"context"
	"time"
)

// SessionRevoker tracks session credentials revoked before their expiry.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
