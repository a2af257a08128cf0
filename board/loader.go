package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load parses a board description and constructs the board it describes.
//
// The format is a header line "WIDTH HEIGHT" followed by HEIGHT rows of
// WIDTH space-separated "0"/"1" tokens, where 1 marks a mine. Lines end
// with "\n" or "\r\n". Any deviation (bad header, non-positive dimensions,
// bad tokens, wrong row length or row count) is an error; a server must
// refuse to start rather than run with an inconsistent board.
//
// Parameters:
//   - r: The board description to read
//
// Returns:
//   - The constructed board, or an error wrapping ErrBadLayout
func Load(r io.Reader) (*Board, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing header line", ErrBadLayout)
	}

	var width, height int
	header := strings.TrimRight(scanner.Text(), "\r")
	if n, err := fmt.Sscanf(header, "%d %d", &width, &height); n != 2 || err != nil {
		return nil, fmt.Errorf("%w: bad header %q", ErrBadLayout, header)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrBadLayout, width, height)
	}

	mines := make([]bool, 0, width*height)
	row := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if row >= height {
			return nil, fmt.Errorf("%w: more than %d rows", ErrBadLayout, height)
		}

		tokens := strings.Fields(line)
		if len(tokens) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadLayout, row, len(tokens), width)
		}

		for _, tok := range tokens {
			switch tok {
			case "0":
				mines = append(mines, false)
			case "1":
				mines = append(mines, true)
			default:
				return nil, fmt.Errorf("%w: row %d has bad cell %q", ErrBadLayout, row, tok)
			}
		}

		row++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading board description: %w", err)
	}

	if row != height {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrBadLayout, row, height)
	}

	return New(width, height, mines)
}

// LoadFile reads a board description from the file at path. See Load for
// the format.
//
// Parameters:
//   - path: Path to the board description file
//
// Returns:
//   - The constructed board, or an error if the file cannot be read or parsed
func LoadFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening board file: %w", err)
	}
	defer f.Close()

	b, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("board file %s: %w", path, err)
	}

	return b, nil
}
