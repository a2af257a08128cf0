package board

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustBoard builds a board with mines at the given coordinates.
func mustBoard(t *testing.T, width, height int, mines ...[2]int) *Board {
	t.Helper()

	layout := make([]bool, width*height)
	for _, m := range mines {
		layout[m[1]*width+m[0]] = true
	}

	b, err := New(width, height, layout)
	require.NoError(t, err)
	return b
}

// checkInvariants asserts the board's representation invariants through its
// observers: every adjacency count matches the live mine layout, and no dug
// cell holds a mine.
func checkInvariants(t *testing.T, b *Board) {
	t.Helper()

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			count := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}

					if b.HasMine(x+dx, y+dy) {
						count++
					}
				}
			}

			assert.Equal(t, count, b.MineCount(x, y), "count at (%d,%d)", x, y)
			if b.IsDug(x, y) {
				assert.False(t, b.HasMine(x, y), "dug cell (%d,%d) holds a mine", x, y)
			}
		}
	}
}

func TestNewRandom(t *testing.T) {
	t.Run("places a third of the cells as mines", func(t *testing.T) {
		for _, dims := range [][2]int{{10, 10}, {4, 4}, {1, 1}, {7, 3}} {
			b, err := NewRandom(dims[0], dims[1])
			require.NoError(t, err)

			mines := 0
			for y := 0; y < b.Height(); y++ {
				for x := 0; x < b.Width(); x++ {
					if b.HasMine(x, y) {
						mines++
					}
				}
			}

			assert.InDelta(t, float64(dims[0]*dims[1])/3, float64(mines), 0.5,
				"%dx%d board has %d mines", dims[0], dims[1], mines)
			checkInvariants(t, b)
		}
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 5}, {5, -1}} {
			_, err := NewRandom(dims[0], dims[1])
			assert.ErrorIs(t, err, ErrBadLayout)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("builds counts from the layout", func(t *testing.T) {
		b := mustBoard(t, 3, 3, [2]int{0, 0}, [2]int{2, 2})

		assert.True(t, b.HasMine(0, 0))
		assert.True(t, b.HasMine(2, 2))
		assert.False(t, b.HasMine(1, 1))

		assert.Equal(t, 2, b.MineCount(1, 1))
		assert.Equal(t, 1, b.MineCount(1, 0))
		assert.Equal(t, 1, b.MineCount(2, 1))
		assert.Equal(t, 0, b.MineCount(0, 0))
		checkInvariants(t, b)
	})

	t.Run("rejects a layout of the wrong size", func(t *testing.T) {
		_, err := New(3, 3, make([]bool, 8))
		assert.ErrorIs(t, err, ErrBadLayout)
	})

	t.Run("all cells start untouched", func(t *testing.T) {
		b := mustBoard(t, 2, 2, [2]int{0, 0})
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				assert.True(t, b.IsUntouched(x, y))
			}
		}
	})
}

func TestDig_MineHit(t *testing.T) {
	b := mustBoard(t, 3, 3, [2]int{1, 1})

	require.Equal(t, 1, b.MineCount(0, 0))

	hit := b.Dig(1, 1)
	assert.True(t, hit, "digging a mined cell is a hit")
	assert.True(t, b.IsDug(1, 1))
	assert.False(t, b.HasMine(1, 1), "the mine is cleared by the hit")

	// Neighbor counts reflect the removal immediately.
	assert.Equal(t, 0, b.MineCount(0, 0))
	checkInvariants(t, b)

	t.Run("hit does not cascade", func(t *testing.T) {
		for _, c := range [][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
			assert.True(t, b.IsUntouched(c[0], c[1]), "cell (%d,%d) should be untouched", c[0], c[1])
		}
	})
}

func TestDig_NoOps(t *testing.T) {
	b := mustBoard(t, 3, 3, [2]int{1, 1})

	t.Run("out of range returns false", func(t *testing.T) {
		gen := b.Generation()
		assert.False(t, b.Dig(-1, 0))
		assert.False(t, b.Dig(0, -1))
		assert.False(t, b.Dig(3, 0))
		assert.False(t, b.Dig(0, 3))
		assert.Equal(t, gen, b.Generation(), "no-op digs do not change the board")
	})

	t.Run("flagged cell is not dug", func(t *testing.T) {
		b.Flag(1, 1)
		assert.False(t, b.Dig(1, 1))
		assert.True(t, b.IsFlagged(1, 1))
		assert.True(t, b.HasMine(1, 1), "a flag shields the mine from digs")
	})

	t.Run("dug cell stays dug", func(t *testing.T) {
		require.False(t, b.Dig(0, 0))
		require.True(t, b.IsDug(0, 0))

		gen := b.Generation()
		assert.False(t, b.Dig(0, 0))
		assert.Equal(t, gen, b.Generation())
	})
}

func TestDig_Cascade(t *testing.T) {
	// 4x4 board, single mine at (2,2). Digging (0,0) must reveal the whole
	// connected zero-count region plus its bordering count-1 cells, and
	// nothing beyond.
	b := mustBoard(t, 4, 4, [2]int{2, 2})

	hit := b.Dig(0, 0)
	require.False(t, hit)

	dug := [][2]int{
		{0, 0}, {1, 0}, {2, 0}, {3, 0},
		{0, 1}, {1, 1}, {2, 1}, {3, 1},
		{0, 2}, {1, 2},
		{0, 3}, {1, 3},
	}
	for _, c := range dug {
		assert.True(t, b.IsDug(c[0], c[1]), "cell (%d,%d) should be revealed", c[0], c[1])
	}

	untouched := [][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}}
	for _, c := range untouched {
		assert.True(t, b.IsUntouched(c[0], c[1]), "cell (%d,%d) should not be revealed", c[0], c[1])
	}

	assert.True(t, b.HasMine(2, 2), "cascade never reaches the mine")
	checkInvariants(t, b)
}

func TestDig_CascadeBlockedByFlag(t *testing.T) {
	b := mustBoard(t, 4, 1)

	b.Flag(2, 0)
	b.Dig(0, 0)

	assert.True(t, b.IsDug(0, 0))
	assert.True(t, b.IsDug(1, 0))
	assert.True(t, b.IsFlagged(2, 0), "flags block the cascade")
	assert.True(t, b.IsUntouched(3, 0), "cells behind a flag stay hidden")
}

func TestDig_NumberedCellDoesNotCascade(t *testing.T) {
	b := mustBoard(t, 3, 3, [2]int{0, 0})

	require.False(t, b.Dig(1, 1))
	assert.True(t, b.IsDug(1, 1))

	for _, c := range [][2]int{{1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		assert.True(t, b.IsUntouched(c[0], c[1]), "cell (%d,%d) should stay untouched", c[0], c[1])
	}
}

func TestFlagDeflag(t *testing.T) {
	b := mustBoard(t, 3, 3, [2]int{1, 1})

	t.Run("flag then deflag round-trips", func(t *testing.T) {
		b.Flag(0, 0)
		assert.True(t, b.IsFlagged(0, 0))

		b.Deflag(0, 0)
		assert.True(t, b.IsUntouched(0, 0))
	})

	t.Run("flagging a flagged cell is a no-op", func(t *testing.T) {
		b.Flag(0, 0)
		gen := b.Generation()
		before := b.Render()

		b.Flag(0, 0)
		assert.Equal(t, gen, b.Generation())
		assert.Equal(t, before, b.Render())
	})

	t.Run("deflagging an untouched cell is a no-op", func(t *testing.T) {
		gen := b.Generation()
		b.Deflag(2, 2)
		assert.True(t, b.IsUntouched(2, 2))
		assert.Equal(t, gen, b.Generation())
	})

	t.Run("flagging a dug cell is a no-op", func(t *testing.T) {
		require.False(t, b.Dig(2, 0))
		b.Flag(2, 0)
		assert.True(t, b.IsDug(2, 0))
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		gen := b.Generation()
		b.Flag(-1, 0)
		b.Flag(0, 99)
		b.Deflag(-1, 0)
		assert.Equal(t, gen, b.Generation())
	})
}

func TestRender(t *testing.T) {
	t.Run("untouched board renders dashes", func(t *testing.T) {
		b := mustBoard(t, 3, 2, [2]int{1, 1})
		assert.Equal(t, "- - -\n- - -", b.Render())
	})

	t.Run("flags render as F", func(t *testing.T) {
		b := mustBoard(t, 3, 2, [2]int{1, 1})
		b.Flag(2, 0)
		assert.Equal(t, "- - F\n- - -", b.Render())
	})

	t.Run("dug cells render counts, blank for zero", func(t *testing.T) {
		b := mustBoard(t, 4, 4, [2]int{2, 2})
		b.Dig(0, 0)

		want := strings.Join([]string{
			"       ",
			"  1 1 1",
			"  1 - -",
			"  1 - -",
		}, "\n")
		assert.Equal(t, strings.TrimRight(want, " \n"), b.Render())
	})

	t.Run("render after a mine hit shows updated counts", func(t *testing.T) {
		b := mustBoard(t, 4, 4, [2]int{2, 2})
		b.Dig(0, 0)
		require.True(t, b.Dig(2, 2))

		// With the only mine removed, the revealed count-1 cells drop to
		// blank; cells never reached stay untouched.
		want := strings.Join([]string{
			"       ",
			"       ",
			"      -",
			"    - -",
		}, "\n")
		assert.Equal(t, strings.TrimRight(want, " \n"), b.Render())
		checkInvariants(t, b)
	})
}

func TestRenderMines(t *testing.T) {
	b := mustBoard(t, 3, 2, [2]int{0, 0}, [2]int{2, 1})
	assert.Equal(t, "*--\n--*", b.RenderMines())

	require.True(t, b.Dig(0, 0))
	assert.Equal(t, "---\n--*", b.RenderMines(), "a dug mine disappears from the layout")
}

func TestGeneration(t *testing.T) {
	b := mustBoard(t, 3, 3, [2]int{1, 1})

	gen := b.Generation()
	b.Flag(0, 0)
	require.Greater(t, b.Generation(), gen)

	gen = b.Generation()
	b.Flag(0, 0) // no-op
	assert.Equal(t, gen, b.Generation())

	b.Deflag(0, 0)
	assert.Greater(t, b.Generation(), gen)
}

func TestBoard_ConcurrentDigs(t *testing.T) {
	// Many goroutines dig disjoint cells of a mine-free board at once. The
	// final board must reflect every dig with no lost or corrupted state.
	const width, height = 16, 16
	b := mustBoard(t, width, height)

	var wg sync.WaitGroup
	for y := 0; y < height; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < width; x++ {
				b.Dig(x, y)
			}
		}(y)
	}
	wg.Wait()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			assert.True(t, b.IsDug(x, y), "cell (%d,%d) lost its dig", x, y)
		}
	}

	checkInvariants(t, b)
}

func TestBoard_ConcurrentMixedOps(t *testing.T) {
	b := mustBoard(t, 8, 8, [2]int{4, 4})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				x, y := (i+j)%8, (i*j)%8
				switch j % 3 {
				case 0:
					b.Dig(x, y)
				case 1:
					b.Flag(x, y)
				default:
					b.Deflag(x, y)
				}

				_ = b.Render()
			}
		}(i)
	}
	wg.Wait()

	checkInvariants(t, b)
}

func ExampleBoard_Render() {
	b, _ := New(3, 3, []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	})
	b.Flag(1, 1)
	fmt.Println(b.Render())
	// Output:
	// - - -
	// - F -
	// - - -
}
