package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// rotateScript compares with Lua ~=, which is not constant-time; only Go-side checks use Equal.
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current or current == "" or current ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// RedisStore keeps one string key per identity under a configurable prefix.
//
//	Performance: Get/Set/Matches/Clear are 1 command each; Rotate is 1 EVALSHA.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "ars".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ars"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(identity string) string {
	return s.prefix + ":" + identity
}

// Get returns the stored refresh token for identity.
func (s *RedisStore) Get(ctx context.Context, identity string) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.key(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// SetRefreshToken overwrites the slot with a plain SET, which Redis applies atomically.
func (s *RedisStore) SetRefreshToken(ctx context.Context, identity, token string) error {
	if token == "" {
		return s.Clear(ctx, identity)
	}
	if err := s.redis.Set(ctx, s.key(identity), token, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Matches compares presented with the stored value in constant time.
func (s *RedisStore) Matches(ctx context.Context, identity, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	stored, ok, err := s.Get(ctx, identity)
	if err != nil || !ok {
		return false, err
	}
	return Equal(stored, presented), nil
}

// Clear deletes the identity key. Deleting a missing key is a no-op.
func (s *RedisStore) Clear(ctx context.Context, identity string) error {
	if err := s.redis.Del(ctx, s.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Rotate swaps presented for next inside a Lua script so the compare and the set cannot interleave
// with another client.
func (s *RedisStore) Rotate(ctx context.Context, identity, presented, next string) error {
	if presented == "" || next == "" {
		return ErrMismatch
	}

	swapped, err := rotateLua.Run(ctx, s.redis, []string{s.key(identity)}, presented, next).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if swapped != 1 {
		return ErrMismatch
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
