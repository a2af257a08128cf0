package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/manuel-guillen/minesweeperServer/board"
)

// defaultKey is the Redis key snapshots are stored under when no key is
// configured.
const defaultKey = "minesweeper:board"

// RedisStore is a Store backed by a Redis key holding the JSON-encoded
// snapshot. Snapshots are written without expiry; a saved board persists
// until overwritten.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore using the given client. An empty key
// selects the default.
//
// Parameters:
//   - client: The Redis client to use
//   - key: The Redis key to store the snapshot under, or "" for the default
//
// Returns:
//   - A new RedisStore
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultKey
	}

	return &RedisStore{client: client, key: key}
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, snap board.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving snapshot to redis: %w", err)
	}

	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (board.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return board.Snapshot{}, ErrNoSnapshot
	}

	if err != nil {
		return board.Snapshot{}, fmt.Errorf("loading snapshot from redis: %w", err)
	}

	var snap board.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return board.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	return snap, nil
}
