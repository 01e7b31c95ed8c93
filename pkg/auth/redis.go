package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix used by RedisStore.
const DefaultRedisPrefix = "vnav:session:"

// RedisClient is the subset of a go-redis client used by RedisStore.
// *redis.Client, *redis.ClusterClient and *redis.Ring satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix for session keys.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// RedisStore is a Redis-backed Store for multi-server deployments. Principals
// are stored as JSON with a TTL matching their expiry.
type RedisStore struct {
	client RedisClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store on client.
func NewRedisStore(client RedisClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient connects to the Redis server at addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (Principal, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Principal{}, ErrNoSession
	}
	if err != nil {
		return Principal{}, fmt.Errorf("auth: redis get: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return Principal{}, fmt.Errorf("auth: decode principal: %w", err)
	}
	if p.Expired(s.now()) {
		return Principal{}, ErrSessionExpired
	}
	return p, nil
}

// Put implements Store. A principal that has already expired is deleted.
func (s *RedisStore) Put(ctx context.Context, sessionID string, p Principal) error {
	var ttl time.Duration
	if exp := p.ExpiresAt(); !exp.IsZero() {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, sessionID)
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("auth: encode principal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("auth: redis set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("auth: redis del: %w", err)
	}
	return nil
}

// Prefix returns the key prefix.
func (s *RedisStore) Prefix() string {
	return s.prefix
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ Store       = (*RedisStore)(nil)
	_ RedisClient = (*redis.Client)(nil)
)
