package game

import (
	"sync"

	"github.com/google/uuid"
)

// gameLocks serializes turns per game: concurrent requests for the same
// game ID queue behind one mutex, while different games proceed in
// parallel. Locks are never evicted; the per-game footprint is one
// mutex, and game IDs are bounded by actual play.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// acquire locks the mutex for a game ID and returns its unlock func.
func (g *gameLocks) acquire(id uuid.UUID) func() {
	g.mu.Lock()
	lock, ok := g.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[id] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
