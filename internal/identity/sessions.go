package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/redisx"
)

// Sessions maps opaque bearer tokens to user ids in Redis. Only the id is
// stored: role and seller approval are re-read per request, so a demotion
// takes effect on the next call, not at the next login.
type Sessions struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = redisx.TTLSession
	}
	return &Sessions{Redis: rdb, TTL: ttl}
}

func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.Redis.Set(ctx, key, userID, s.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Sessions) UserID(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(redisx.KeySession, token)
	id, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", market.ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Sessions) Destroy(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeySession, token)
	return s.Redis.Del(ctx, key).Err()
}
