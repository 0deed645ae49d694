package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no refresh token is cached for the principal.
var ErrNotFound = errors.New("credential not found")

// ErrTokenMismatch is returned when the presented token is not the cached
// one. The entry is left untouched.
var ErrTokenMismatch = errors.New("credential mismatch")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	swapStatusNotFound int64 = 0
	swapStatusMismatch int64 = 1
	swapStatusSwapped  int64 = 2
)

const swapScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "EX", ARGV[3])
return 2
`

var swapLua = redis.NewScript(swapScript)

// Store is the credential cache. One key per principal, TTL-bounded, written
// only by issuance and rotation.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix
// namespaces the keys ("refreshToken:" in the original deployment).
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) key(principalID string) string {
	return s.prefix + principalID
}

// Put stores token as the current refresh token for the principal,
// overwriting any previous entry and resetting the TTL.
func (s *Store) Put(ctx context.Context, principalID, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(principalID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the cached refresh token for the principal, or [ErrNotFound].
func (s *Store) Get(ctx context.Context, principalID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(principalID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

// Swap atomically replaces the cached token with next, but only if the
// cached value equals presented. Exactly one of N concurrent swaps with the
// same presented token can succeed; the rest observe [ErrTokenMismatch]
// (or [ErrNotFound] if the entry expired in between).
func (s *Store) Swap(ctx context.Context, principalID, presented, next string, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	res, err := swapLua.Run(ctx, s.redis, []string{s.key(principalID)}, presented, next, seconds).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch res {
	case swapStatusSwapped:
		return nil
	case swapStatusNotFound:
		return ErrNotFound
	case swapStatusMismatch:
		return ErrTokenMismatch
	default:
		return fmt.Errorf("%w: unexpected swap status %d", ErrRedisUnavailable, res)
	}
}
