// Package snapshot persists board snapshots so a long-lived shared board
// can survive a server restart. A Store holds at most one snapshot; the
// Saver goroutine writes a fresh snapshot whenever the board has changed.
package snapshot

import (
	"context"
	"errors"

	"github.com/manuel-guillen/minesweeperServer/board"
)

// ErrNoSnapshot is returned by Store.Load when no snapshot has been saved.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Store persists and retrieves a single board snapshot. Implementations
// must be safe for concurrent use.
type Store interface {
	// Save persists the snapshot, replacing any previous one.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - s: The snapshot to persist
	//
	// Returns:
	//   - An error if persisting fails
	Save(ctx context.Context, s board.Snapshot) error

	// Load retrieves the most recently saved snapshot.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - The saved snapshot
	//   - ErrNoSnapshot if nothing has been saved, or another error if
	//     retrieval fails
	Load(ctx context.Context) (board.Snapshot, error)
}
