package board

import "fmt"

// Snapshot is a complete, self-contained copy of a board's state, suitable
// for serialization. Slices are row-major, length Width*Height.
type Snapshot struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Mines      []bool      `json:"mines"`
	States     []CellState `json:"states"`
	Generation uint64      `json:"generation"`
}

// Snapshot returns a deep copy of the board's current state. The copy is
// taken atomically under the board lock.
//
// Returns:
//   - A Snapshot of the board at a single consistent point
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{
		Width:      b.width,
		Height:     b.height,
		Mines:      make([]bool, len(b.mines)),
		States:     make([]CellState, len(b.states)),
		Generation: b.generation,
	}
	copy(s.Mines, b.mines)
	copy(s.States, b.states)
	return s
}

// FromSnapshot reconstructs a board from a snapshot, recomputing adjacency
// counts from the mine layout.
//
// Parameters:
//   - s: The snapshot to restore
//
// Returns:
//   - The restored board, or ErrBadLayout if the snapshot is inconsistent
func FromSnapshot(s Snapshot) (*Board, error) {
	b, err := New(s.Width, s.Height, s.Mines)
	if err != nil {
		return nil, err
	}

	if len(s.States) != s.Width*s.Height {
		return nil, fmt.Errorf("%w: %d cell states for %dx%d board", ErrBadLayout, len(s.States), s.Width, s.Height)
	}

	for i, st := range s.States {
		switch st {
		case Untouched, Flagged, Dug:
			b.states[i] = st
		default:
			return nil, fmt.Errorf("%w: unknown cell state %d", ErrBadLayout, st)
		}

		// A dug cell never holds a mine.
		if st == Dug && b.mines[i] {
			return nil, fmt.Errorf("%w: dug cell %d holds a mine", ErrBadLayout, i)
		}
	}

	b.generation = s.Generation
	return b, nil
}
