package snapshot

import (
	"context"
	"time"

	"github.com/manuel-guillen/minesweeperServer/board"
	"github.com/manuel-guillen/minesweeperServer/logger"
)

// Saver periodically persists the board to a Store. It samples the board
// generation on a ticker and saves only when the board has changed since
// the last successful save, so an idle board costs nothing.
type Saver struct {
	Board    *board.Board
	Store    Store
	Interval time.Duration
	Logger   logger.Logger

	lastSaved uint64
	dirty     bool
}

// Run saves snapshots until ctx is cancelled, then performs a final save
// if the board changed since the last one. Run blocks; call it in its own
// goroutine. Save failures are logged and retried on the next tick.
//
// Parameters:
//   - ctx: Cancel to stop the saver
func (s *Saver) Run(ctx context.Context) {
	// First tick establishes the baseline so an unchanged restored board
	// is not immediately re-saved.
	s.lastSaved = s.Board.Generation()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.Board.Generation() != s.lastSaved || s.dirty {
				// The run context is gone; give the final save its own
				// deadline.
				flushCtx, cancel := context.WithTimeout(context.Background(), s.Interval)
				s.save(flushCtx)
				cancel()
			}

			return

		case <-ticker.C:
			if s.Board.Generation() != s.lastSaved || s.dirty {
				s.save(ctx)
			}
		}
	}
}

func (s *Saver) save(ctx context.Context) {
	snap := s.Board.Snapshot()
	if err := s.Store.Save(ctx, snap); err != nil {
		s.Logger.Warn("board snapshot save failed", logger.Field{Key: "error", Value: err})
		s.dirty = true
		return
	}

	s.lastSaved = snap.Generation
	s.dirty = false
	s.Logger.Debug("board snapshot saved", logger.Field{Key: "generation", Value: snap.Generation})
}
