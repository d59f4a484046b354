// Package cache serves the engine tuning tables from Redis, so that
// balance changes roll out without a redeploy.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/sofos1231/socialos-server/internal/tuning"
)

const (
	tuningKey   = "tuning:config"
	revisionKey = "tuning:revision"
)

// RedisClient is the subset of redis operations the tuning source
// needs. Defined here so tests can substitute an in-memory server or a
// mock without a real Redis instance.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisTuningSource reads the tuning payload and its revision counter
// from Redis. It implements tuning.Source for the revision cache.
type RedisTuningSource struct {
	client RedisClient
}

// NewRedisTuningSource wraps an existing redis client.
func NewRedisTuningSource(client RedisClient) *RedisTuningSource {
	return &RedisTuningSource{client: client}
}

// Connect dials Redis and returns a source backed by the live client.
func Connect(ctx context.Context, addr, password string, db int) (*RedisTuningSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisTuningSource(client), nil
}

// Revision returns the current remote revision counter. A missing key
// reads as revision 0.
func (s *RedisTuningSource) Revision(ctx context.Context) (int64, error) {
	val, err := s.client.Get(ctx, revisionKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read tuning revision: %w", err)
	}
	rev, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed tuning revision %q: %w", val, err)
	}
	return rev, nil
}

// Load fetches and decodes the full tuning payload together with its
// revision. A malformed payload is an error; the caller keeps whatever
// it had.
func (s *RedisTuningSource) Load(ctx context.Context) (tuning.Tuning, int64, error) {
	rev, err := s.Revision(ctx)
	if err != nil {
		return tuning.Tuning{}, 0, err
	}

	val, err := s.client.Get(ctx, tuningKey).Result()
	if err == redis.Nil {
		return tuning.Tuning{}, 0, fmt.Errorf("tuning payload not found at %s", tuningKey)
	}
	if err != nil {
		return tuning.Tuning{}, 0, fmt.Errorf("failed to read tuning payload: %w", err)
	}

	var t tuning.Tuning
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return tuning.Tuning{}, 0, fmt.Errorf("malformed tuning payload: %w", err)
	}
	return t, rev, nil
}
