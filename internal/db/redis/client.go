// Package redis implements db.Store on top of rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/lapmatch/internal/db"
	"github.com/kailas-cloud/lapmatch/internal/metrics"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store via rueidis. Every command is timed into
// metrics.DBCommandDuration.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis with client-side caching disabled.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreForTest wraps a provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	err := s.do(ctx, db.OpPing, s.b().Ping().Build()).Error()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// do runs a single command. A nil reply is a normal outcome, not an error.
func (s *Store) do(ctx context.Context, op string, cmd rueidis.Completed) rueidis.RedisResult {
	start := time.Now()
	res := s.client.Do(ctx, cmd)
	err := res.Error()
	if rueidis.IsRedisNil(err) {
		err = nil
	}
	observe(op, start, err)
	return res
}

// doMulti pipelines cmds in one round-trip and times the batch as a whole.
func (s *Store) doMulti(ctx context.Context, op string, cmds []rueidis.Completed) []rueidis.RedisResult {
	start := time.Now()
	results := s.client.DoMulti(ctx, cmds...)
	var errs []error
	for _, r := range results {
		errs = append(errs, r.Error())
	}
	observe(op, start, errors.Join(errs...))
	return results
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DBCommandDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
