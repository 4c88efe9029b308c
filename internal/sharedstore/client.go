// Package sharedstore wraps the Redis instance that gives packetcheck
// its cross-process progress tier and its job queue, plus lifecycle
// management for a locally-managed Redis container.
package sharedstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aemqa/packetcheck/internal/progress"
)

const (
	// DefaultOpTimeout bounds individual Redis operations so a hung
	// shared tier degrades instead of stalling a job.
	DefaultOpTimeout = 3 * time.Second
	// DefaultEntryTTL expires progress entries so the shared store does
	// not accumulate finished jobs forever.
	DefaultEntryTTL = 24 * time.Hour
)

// Client is a thin wrapper over a Redis connection.
type Client struct {
	rdb       *redis.Client
	opTimeout time.Duration
}

// ClientConfig configures the Redis connection.
type ClientConfig struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// NewClient connects to Redis. Call Ping to verify reachability.
func NewClient(cfg ClientConfig) *Client {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		opTimeout: cfg.OpTimeout,
	}
}

// Ping checks that Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ProgressStore returns a progress.Store backed by this client. Entries
// are stored as JSON strings under prefix-qualified keys with a TTL.
func (c *Client) ProgressStore(prefix string) progress.Store {
	return &redisProgressStore{c: c, prefix: prefix, ttl: DefaultEntryTTL}
}

type redisProgressStore struct {
	c      *Client
	prefix string
	ttl    time.Duration
}

func (s *redisProgressStore) Name() string { return "redis" }

func (s *redisProgressStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *redisProgressStore) Put(ctx context.Context, e progress.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding progress entry: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.c.opTimeout)
	defer cancel()
	if err := s.c.rdb.Set(ctx, s.key(e.Key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing progress entry: %w", err)
	}
	return nil
}

func (s *redisProgressStore) Get(ctx context.Context, key string) (progress.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.c.opTimeout)
	defer cancel()
	data, err := s.c.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return progress.Entry{}, progress.ErrNotFound
	}
	if err != nil {
		return progress.Entry{}, fmt.Errorf("reading progress entry: %w", err)
	}
	var e progress.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return progress.Entry{}, fmt.Errorf("decoding progress entry: %w", err)
	}
	return e, nil
}

// ListQueue returns a Redis-list FIFO queue under the given key. Enqueue
// pushes to the head; Dequeue pops from the tail with a blocking wait.
type ListQueue struct {
	c   *Client
	key string
}

// Queue creates a list-backed queue.
func (c *Client) Queue(key string) *ListQueue {
	return &ListQueue{c: c, key: key}
}

// Push enqueues a raw payload.
func (q *ListQueue) Push(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, q.c.opTimeout)
	defer cancel()
	if err := q.c.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// Pop dequeues the oldest payload, blocking up to wait. A quiet queue
// returns (nil, nil) so the caller can re-check its context and loop.
func (q *ListQueue) Pop(ctx context.Context, wait time.Duration) ([]byte, error) {
	res, err := q.c.rdb.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeueing job: %w", err)
	}
	// BRPop returns [key, value].
	return []byte(res[1]), nil
}

// Len reports the queue depth.
func (q *ListQueue) Len(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, q.c.opTimeout)
	defer cancel()
	return q.c.rdb.LLen(ctx, q.key).Result()
}
