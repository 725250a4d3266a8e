// Package session keeps the list of revoked session tokens.
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"chirper/internal/model"
)

const keyPrefix = "session:revoked:"

// Denylist stores revoked token ids until the tokens would have expired.
type Denylist struct {
	rdb redis.Cmdable
}

func NewDenylist(rdb redis.Cmdable) *Denylist {
	return &Denylist{rdb: rdb}
}

// Revoke marks jti as revoked until expiresAt. Already-expired tokens are skipped.
func (d *Denylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return model.Transient("revoke session", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, model.Transient("check session", err)
	}
	return n > 0, nil
}
