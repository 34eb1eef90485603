package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer issues monotonically increasing numbers per key.
type Sequencer interface {
	Next(ctx context.Context, key string) (int64, error)
	Latest(ctx context.Context, key string) (int64, error)
}

// RedisSequencer keeps counters in Redis so every app instance shares them.
type RedisSequencer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSequencer returns a Sequencer whose counters expire after ttl of inactivity.
func NewRedisSequencer(client *redis.Client, ttl time.Duration) *RedisSequencer {
	return &RedisSequencer{client: client, ttl: ttl}
}

func (s *RedisSequencer) key(key string) string {
	return "listview:seq:" + key
}

// Next increments and returns the counter for key.
func (s *RedisSequencer) Next(ctx context.Context, key string) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, s.key(key))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(key), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Latest returns the last issued number, or 0.
func (s *RedisSequencer) Latest(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, s.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// MemorySequencer is a process-local Sequencer.
type MemorySequencer struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewMemorySequencer constructs an empty MemorySequencer.
func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{last: make(map[string]int64)}
}

func (s *MemorySequencer) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[key]++
	return s.last[key], nil
}

func (s *MemorySequencer) Latest(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key], nil
}
