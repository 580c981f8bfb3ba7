// Package checkpoint persists a run's GraphState between the moment it
// suspends for human approval and the moment a resume request reloads it.
// One key per thread_id; last writer wins.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// ErrNotFound is returned when no checkpoint exists for a thread.
var ErrNotFound = fmt.Errorf("checkpoint not found")

// Store saves and loads GraphState by thread_id.
type Store interface {
	Save(ctx context.Context, state *models.GraphState) error
	Load(ctx context.Context, threadID string) (*models.GraphState, error)
	Delete(ctx context.Context, threadID string) error
}

// RedisStore is the production Store: one Redis string key per thread,
// holding the JSON-encoded GraphState, with a TTL so abandoned HITL waits
// don't accumulate forever.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore builds a RedisStore. ttl of zero means no expiry.
func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "opsreasoner:checkpoint"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) key(threadID string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, threadID)
}

// Save writes the full state under its thread_id, overwriting any prior
// checkpoint for the same thread.
func (s *RedisStore) Save(ctx context.Context, state *models.GraphState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state for %s: %w", state.ThreadID, err)
	}
	if err := s.client.Set(ctx, s.key(state.ThreadID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", state.ThreadID, err)
	}
	return nil
}

// Load retrieves the checkpoint for threadID.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*models.GraphState, error) {
	data, err := s.client.Get(ctx, s.key(threadID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", threadID, err)
	}
	var state models.GraphState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("checkpoint: unmarshal %s: %w", threadID, err)
	}
	return &state, nil
}

// Delete removes the checkpoint for threadID once a run reaches a terminal state.
func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, s.key(threadID)).Err(); err != nil {
		return fmt.Errorf("checkpoint: delete %s: %w", threadID, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
