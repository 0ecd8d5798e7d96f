package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a byte-value key-value store over a Redis client.
type Storage struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) StorageOption {
	return func(s *Storage) { s.prefix = prefix }
}

// WithTTL sets an expiration on every write. Zero means no expiration.
func WithTTL(ttl time.Duration) StorageOption {
	return func(s *Storage) { s.ttl = ttl }
}

func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the value at key. A missing key yields nil data and no error.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Store writes value at key.
func (s *Storage) Store(ctx context.Context, key string, value []byte) error {
	return s.db.Set(ctx, s.prefix+key, value, s.ttl).Err()
}
