package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// RefreshTokenRepository tracks live refresh-token ids so tokens can be
// revoked and rotated. Entries expire with the token itself.
type RefreshTokenRepository interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	UserID(ctx context.Context, jti string) (string, error)
	Delete(ctx context.Context, jti string) error
}

type refreshTokenRepository struct {
	client *redis.Client
}

// NewRefreshTokenRepository returns a Redis-backed implementation.
func NewRefreshTokenRepository(client *redis.Client) RefreshTokenRepository {
	return &refreshTokenRepository{client: client}
}

func (r *refreshTokenRepository) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, refreshKeyPrefix+jti, userID, ttl).Err()
}

// UserID resolves a stored token id to its user, or redis.Nil when the
// token was revoked or has expired.
func (r *refreshTokenRepository) UserID(ctx context.Context, jti string) (string, error) {
	return r.client.Get(ctx, refreshKeyPrefix+jti).Result()
}

func (r *refreshTokenRepository) Delete(ctx context.Context, jti string) error {
	return r.client.Del(ctx, refreshKeyPrefix+jti).Err()
}
