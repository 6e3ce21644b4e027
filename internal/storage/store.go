package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// Store persists game state between turns. LoadGameState returns
// (nil, nil) when no state exists for the ID, so callers can
// distinguish "not found" from a backend failure.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// ListGameStates returns every stored game state. Ordering is not
	// guaranteed.
	ListGameStates(ctx context.Context) ([]*state.GameState, error)
}
