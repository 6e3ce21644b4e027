package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mystery-engine/pkg/state"
)

const (
	gameStatePrefix = "gamestate:"

	// Abandoned games expire after a week.
	gameStateTTL = 7 * 24 * time.Hour
)

// RedisStore implements Store on Redis. Game states are stored as JSON
// under gamestate:<uuid> with a sliding TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at the given address.
func NewRedisStore(addr string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisStore{client: client}
}

// NewRedisStoreFromClient wraps an existing client. Used in tests with
// miniredis.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client exposes the underlying connection for services that share it,
// like the image cache.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	if err := r.client.Set(ctx, gameStateKey(id), data, gameStateTTL).Err(); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	data, err := r.client.Get(ctx, gameStateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &gs, nil
}

func (r *RedisStore) ListGameStates(ctx context.Context) ([]*state.GameState, error) {
	states := make([]*state.GameState, 0)

	iter := r.client.Scan(ctx, 0, gameStatePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// Expired between scan and get.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load game state %s: %w", iter.Val(), err)
		}
		var gs state.GameState
		if err := json.Unmarshal(data, &gs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game state %s: %w", iter.Val(), err)
		}
		states = append(states, &gs)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan game states: %w", err)
	}
	return states, nil
}

func (r *RedisStore) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gameStateKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}

func gameStateKey(id uuid.UUID) string {
	return gameStatePrefix + id.String()
}
