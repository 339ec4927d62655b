package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	goredis "github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

func RevokedTokenKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}

type tokenDenylist struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewTokenDenylist(rdb *goredis.Client) auth.TokenDenylist {
	return &tokenDenylist{rdb: rdb, now: time.Now}
}

// Revoke implements auth.TokenDenylist. The entry lives until the token would
// have expired anyway.
func (d *tokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, RevokedTokenKey(tokenID), "1", ttl.Round(time.Second)).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements auth.TokenDenylist.
func (d *tokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, RevokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
