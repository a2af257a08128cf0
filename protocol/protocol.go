// Package protocol implements the line-oriented command grammar spoken by
// Minesweeper clients:
//
//	COMMAND ::= "look" | "help" | "bye"
//	          | "dig" SP INT SP INT
//	          | "flag" SP INT SP INT
//	          | "deflag" SP INT SP INT
//
// Keywords are case-sensitive, fields are separated by single spaces, and
// integers may be negative. Anything else fails to parse; the session
// layer answers such lines with HelpText and leaves the board untouched.
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

// HelpText is the canonical usage line returned for a "help" command and
// for any line that does not match the grammar.
const HelpText = "COMMANDS: look | dig x y | flag x y | deflag x y | help | bye"

// ErrUnknownCommand is returned by Parse for any line that does not match
// the command grammar.
var ErrUnknownCommand = errors.New("unknown command")

// Verb identifies one of the six client commands.
type Verb string

const (
	VerbLook   Verb = "look"
	VerbHelp   Verb = "help"
	VerbBye    Verb = "bye"
	VerbDig    Verb = "dig"
	VerbFlag   Verb = "flag"
	VerbDeflag Verb = "deflag"
)

// Command is one parsed client request. X and Y are meaningful only for
// the dig, flag and deflag verbs; they carry whatever integers the client
// sent, including out-of-range ones (range checking is the board's
// concern, which treats out-of-range coordinates as no-ops).
type Command struct {
	Verb Verb
	X    int
	Y    int
}

// Parse parses a single input line into a Command.
//
// Parameters:
//   - line: One client input line, without its terminating newline
//
// Returns:
//   - The parsed command
//   - ErrUnknownCommand if the line does not match the grammar
func Parse(line string) (Command, error) {
	tokens := strings.Split(line, " ")

	switch tokens[0] {
	case "look", "help", "bye":
		if len(tokens) != 1 {
			return Command{}, ErrUnknownCommand
		}

		return Command{Verb: Verb(tokens[0])}, nil

	case "dig", "flag", "deflag":
		if len(tokens) != 3 {
			return Command{}, ErrUnknownCommand
		}

		x, err := parseInt(tokens[1])
		if err != nil {
			return Command{}, ErrUnknownCommand
		}

		y, err := parseInt(tokens[2])
		if err != nil {
			return Command{}, ErrUnknownCommand
		}

		return Command{Verb: Verb(tokens[0]), X: x, Y: y}, nil

	default:
		return Command{}, ErrUnknownCommand
	}
}

// parseInt accepts an optionally negated run of digits. Unlike
// strconv.Atoi it rejects a leading "+", matching the wire grammar.
func parseInt(token string) (int, error) {
	digits := strings.TrimPrefix(token, "-")
	if digits == "" {
		return 0, ErrUnknownCommand
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, ErrUnknownCommand
		}
	}

	return strconv.Atoi(token)
}
