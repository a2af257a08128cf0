// Package board implements the shared Minesweeper grid: cell states, mine
// placement, adjacency counts, and the dig/flag/deflag mutations including
// the flood-fill reveal cascade.
//
// A Board is safe for concurrent use. Every public operation runs under a
// single board-wide mutex, so from any observer's perspective one operation
// completes entirely before another begins; a flood-fill cascade is never
// observable half-done.
package board

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// ErrBadLayout is returned when a board is constructed from dimensions or a
// mine layout that do not describe a valid rectangular grid.
var ErrBadLayout = errors.New("bad board layout")

// CellState is the visible state of a single cell.
type CellState uint8

const (
	Untouched CellState = iota // Not yet dug or flagged
	Flagged                    // Marked with a flag; dig is a no-op
	Dug                        // Revealed
)

// Board is a width x height Minesweeper grid shared by all connected
// players. Cells are stored row-major, index y*width+x.
//
// Invariants, holding before and after every public operation:
//   - counts[i] equals the number of mine-bearing cells among the (up to 8)
//     grid neighbors of cell i, maintained incrementally as mines are
//     placed and removed.
//   - A Dug cell never holds a mine; the mine is removed at the moment of
//     a successful dig so the game can continue.
type Board struct {
	mu sync.Mutex

	width  int
	height int

	states []CellState
	mines  []bool
	counts []uint8

	// generation increases on every effective mutation. No-ops leave it
	// unchanged, so it identifies a distinct observable board state.
	generation uint64
}

// NewRandom creates a board of the given dimensions with round(width*height/3)
// mines placed uniformly at random without replacement.
//
// Parameters:
//   - width: Number of columns, must be positive
//   - height: Number of rows, must be positive
//
// Returns:
//   - The new board, or ErrBadLayout if a dimension is not positive
func NewRandom(width, height int) (*Board, error) {
	b, err := newEmpty(width, height)
	if err != nil {
		return nil, err
	}

	numMines := int(math.Round(float64(width*height) / 3))
	for _, i := range rand.Perm(width * height)[:numMines] {
		b.placeMine(i%width, i/width)
	}

	return b, nil
}

// New creates a board with an explicit mine layout, row-major.
//
// Parameters:
//   - width: Number of columns, must be positive
//   - height: Number of rows, must be positive
//   - mines: Mine placement, row-major, length must equal width*height
//
// Returns:
//   - The new board, or ErrBadLayout if the dimensions or layout are invalid
func New(width, height int, mines []bool) (*Board, error) {
	b, err := newEmpty(width, height)
	if err != nil {
		return nil, err
	}

	if len(mines) != width*height {
		return nil, fmt.Errorf("%w: %d mine cells for %dx%d board", ErrBadLayout, len(mines), width, height)
	}

	for i, mined := range mines {
		if mined {
			b.placeMine(i%width, i/width)
		}
	}

	return b, nil
}

func newEmpty(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrBadLayout, width, height)
	}

	return &Board{
		width:  width,
		height: height,
		states: make([]CellState, width*height),
		mines:  make([]bool, width*height),
		counts: make([]uint8, width*height),
	}, nil
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// InBounds reports whether (x,y) is a cell on this board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Generation returns a counter that increases with every effective
// mutation of the board. Two equal generations imply identical renders.
//
// Returns:
//   - The current generation number
func (b *Board) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// IsUntouched reports whether cell (x,y) is untouched. Out-of-range
// coordinates report false.
func (b *Board) IsUntouched(x, y int) bool {
	s, ok := b.stateAt(x, y)
	return ok && s == Untouched
}

// IsFlagged reports whether cell (x,y) is flagged. Out-of-range
// coordinates report false.
func (b *Board) IsFlagged(x, y int) bool {
	s, ok := b.stateAt(x, y)
	return ok && s == Flagged
}

// IsDug reports whether cell (x,y) has been dug. Out-of-range coordinates
// report false.
func (b *Board) IsDug(x, y int) bool {
	s, ok := b.stateAt(x, y)
	return ok && s == Dug
}

func (b *Board) stateAt(x, y int) (CellState, bool) {
	if !b.InBounds(x, y) {
		return Untouched, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[b.index(x, y)], true
}

// HasMine reports whether cell (x,y) currently holds a mine. Out-of-range
// coordinates report false.
func (b *Board) HasMine(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mines[b.index(x, y)]
}

// MineCount returns the number of mines among the grid neighbors of cell
// (x,y). Out-of-range coordinates report 0.
func (b *Board) MineCount(x, y int) int {
	if !b.InBounds(x, y) {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.counts[b.index(x, y)])
}

// Dig digs cell (x,y) and reports whether a mine was hit.
//
// An untouched cell becomes dug. If it held a mine, the mine is removed
// (updating neighbor counts) and Dig returns true without cascading. If it
// held no mine and has no adjacent mines, the reveal cascades: every
// grid-adjacent untouched cell is dug by the same rule, stopping at cells
// with a nonzero adjacency count (dug but not expanded). Flagged cells,
// already-dug cells and out-of-range coordinates are no-ops returning
// false.
//
// Parameters:
//   - x: Column of the cell to dig
//   - y: Row of the cell to dig
//
// Returns:
//   - true if an untouched, mined cell was dug (a hit), false otherwise
func (b *Board) Dig(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(x, y)
	if b.states[i] != Untouched {
		return false
	}

	b.states[i] = Dug
	b.generation++

	if b.mines[i] {
		b.removeMine(x, y)
		return true
	}

	if b.counts[i] == 0 {
		b.cascade(x, y)
	}

	return false
}

// cascade reveals the maximal connected region of zero-count cells around
// (x,y) plus their immediate bordering nonzero-count cells. Caller must
// hold b.mu and have already dug (x,y), which must have count zero.
//
// The traversal uses an explicit worklist instead of recursion so memory
// use is bounded by board size rather than call depth. The Untouched->Dug
// transition doubles as the visited marker: a cell is dug at most once, so
// the loop terminates.
func (b *Board) cascade(x, y int) {
	work := [][2]int{{x, y}}
	for len(work) > 0 {
		cx, cy := work[len(work)-1][0], work[len(work)-1][1]
		work = work[:len(work)-1]

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}

				nx, ny := cx+dx, cy+dy
				if !b.InBounds(nx, ny) {
					continue
				}

				n := b.index(nx, ny)
				if b.states[n] != Untouched {
					continue
				}

				// A zero-count cell has no mined neighbors, so every cell
				// reached here is mine-free.
				b.states[n] = Dug
				if b.counts[n] == 0 {
					work = append(work, [2]int{nx, ny})
				}
			}
		}
	}
}

// Flag flags cell (x,y) if it is untouched. Flagged cells, dug cells and
// out-of-range coordinates are no-ops.
//
// Parameters:
//   - x: Column of the cell to flag
//   - y: Row of the cell to flag
func (b *Board) Flag(x, y int) {
	if !b.InBounds(x, y) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(x, y)
	if b.states[i] == Untouched {
		b.states[i] = Flagged
		b.generation++
	}
}

// Deflag returns cell (x,y) to the untouched state if it is flagged.
// Untouched cells, dug cells and out-of-range coordinates are no-ops.
//
// Parameters:
//   - x: Column of the cell to deflag
//   - y: Row of the cell to deflag
func (b *Board) Deflag(x, y int) {
	if !b.InBounds(x, y) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(x, y)
	if b.states[i] == Flagged {
		b.states[i] = Untouched
		b.generation++
	}
}

// Render returns the player-visible board as rows of space-separated
// tokens: "-" untouched, "F" flagged, " " dug with zero adjacent mines,
// and digits 1-8 for dug cells with that many adjacent mines. Rows are
// newline-separated; trailing whitespace of the whole render is trimmed.
//
// Returns:
//   - The rendered grid
func (b *Board) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	tokens := make([]string, b.width)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			i := b.index(x, y)
			switch b.states[i] {
			case Untouched:
				tokens[x] = "-"
			case Flagged:
				tokens[x] = "F"
			case Dug:
				if b.counts[i] == 0 {
					tokens[x] = " "
				} else {
					tokens[x] = strconv.Itoa(int(b.counts[i]))
				}
			}
		}

		sb.WriteString(strings.Join(tokens, " "))
		sb.WriteByte('\n')
	}

	return strings.TrimRight(sb.String(), " \n")
}

// RenderMines returns the mine layout as rows of "*" (mine) and "-"
// characters. Diagnostic use only, for operator visibility at startup;
// never sent to clients.
//
// Returns:
//   - The rendered mine layout
func (b *Board) RenderMines() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.mines[b.index(x, y)] {
				sb.WriteByte('*')
			} else {
				sb.WriteByte('-')
			}
		}

		sb.WriteByte('\n')
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (b *Board) index(x, y int) int {
	return y*b.width + x
}

// placeMine sets a mine at (x,y) and bumps the counts of its in-bounds
// neighbors. Caller must hold b.mu or have exclusive access.
func (b *Board) placeMine(x, y int) {
	b.mines[b.index(x, y)] = true
	b.eachNeighbor(x, y, func(i int) { b.counts[i]++ })
}

// removeMine clears the mine at (x,y) and decrements the counts of its
// in-bounds neighbors. Caller must hold b.mu.
func (b *Board) removeMine(x, y int) {
	b.mines[b.index(x, y)] = false
	b.eachNeighbor(x, y, func(i int) {
		if b.counts[i] > 0 {
			b.counts[i]--
		}
	})
}

func (b *Board) eachNeighbor(x, y int, f func(i int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}

			if b.InBounds(x+dx, y+dy) {
				f(b.index(x+dx, y+dy))
			}
		}
	}
}
