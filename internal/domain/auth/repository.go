package auth

import (
	"context"
	"time"
)

// TokenDenylist remembers logged-out access tokens until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
