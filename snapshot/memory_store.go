package snapshot

import (
	"context"
	"sync"

	"github.com/manuel-guillen/minesweeperServer/board"
)

// MemoryStore is an in-process Store, used in tests and when no external
// persistence is configured.
type MemoryStore struct {
	mu    sync.Mutex
	snap  board.Snapshot
	saved bool
}

// NewMemoryStore returns an empty MemoryStore.
//
// Returns:
//   - A new MemoryStore with no snapshot saved
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, snap board.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.saved = true
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (board.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return board.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return board.Snapshot{}, ErrNoSnapshot
	}

	return s.snap, nil
}
