package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/manuel-guillen/minesweeperServer/logger"
	"github.com/manuel-guillen/minesweeperServer/protocol"
)

// boomMessage is the response to a dig that hits a mine. Outside debug
// mode it is the last thing a client hears.
const boomMessage = "BOOM!"

// Session handles one client connection: it reads newline-terminated
// commands, applies them to the shared board, and writes back responses.
// A session holds no board state of its own; the only connection-scoped
// state is the server's debug flag.
type Session struct {
	id     uint32
	conn   net.Conn
	server *Server
	log    logger.Logger

	closeOnce sync.Once
}

func newSession(id uint32, conn net.Conn, srv *Server) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		server: srv,
		log:    srv.Logger.With(logger.Field{Key: "session", Value: id}),
	}
}

// ID returns the session's unique identifier assigned by the server.
//
// Returns:
//   - The session ID (uint32)
func (s *Session) ID() uint32 {
	return s.id
}

// Close closes the session's connection, unblocking its read loop. Safe to
// call multiple times and from any goroutine.
//
// Returns:
//   - An error if closing the connection failed
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})

	return err
}

// Handle runs the session's read loop until the client disconnects, sends
// "bye", or digs a mine outside debug mode. It sends the welcome line
// first, then answers one (possibly multi-line) response per request.
// Every exit path closes the connection and deregisters the session
// exactly once.
func (s *Session) Handle() {
	defer func() {
		_ = s.Close()
		s.server.removeSession(s.id)
	}()

	w := bufio.NewWriter(s.conn)

	welcome := fmt.Sprintf(
		"Welcome to Minesweeper. Board: %d columns by %d rows. Players: %d including you. Type 'help' for help.",
		s.server.Board.Width(), s.server.Board.Height(), s.server.players.Load(),
	)
	if err := writeLine(w, welcome); err != nil {
		s.log.Warn("welcome write failed", logger.Field{Key: "error", Value: err})
		return
	}

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		response, closeAfter := s.dispatch(scanner.Text())
		if response != "" {
			// The whole response, renders included, is flushed in one
			// write so its rows never interleave with the next response.
			if err := writeLine(w, response); err != nil {
				s.log.Warn("response write failed", logger.Field{Key: "error", Value: err})
				return
			}
		}

		if closeAfter {
			return
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Warn("connection read failed", logger.Field{Key: "error", Value: err})
	}
}

// dispatch applies one input line to the board and returns the response to
// send (possibly empty) and whether the session should close afterwards.
// Lines that do not parse get the help text and never close the session or
// touch the board.
func (s *Session) dispatch(line string) (response string, closeAfter bool) {
	cmd, err := protocol.Parse(line)
	if err != nil {
		return protocol.HelpText, false
	}

	s.log.Debug("command", logger.Field{Key: "line", Value: line})

	switch cmd.Verb {
	case protocol.VerbLook:
		return s.render(), false

	case protocol.VerbHelp:
		return protocol.HelpText, false

	case protocol.VerbBye:
		return "", true

	case protocol.VerbDig:
		if s.server.Board.Dig(cmd.X, cmd.Y) {
			return boomMessage, !s.server.Debug
		}

		return s.render(), false

	case protocol.VerbFlag:
		s.server.Board.Flag(cmd.X, cmd.Y)
		return s.render(), false

	case protocol.VerbDeflag:
		s.server.Board.Deflag(cmd.X, cmd.Y)
		return s.render(), false

	default:
		return protocol.HelpText, false
	}
}

// render returns the current board render, served from the server's render
// cache keyed by board generation. Concurrent look storms against an
// unchanged board collapse into a single O(area) render.
func (s *Session) render() string {
	key := fmt.Sprintf("render:%d", s.server.Board.Generation())
	out, err := s.server.renders.GetOrFetch(context.Background(), key, renderTTL,
		func(context.Context) (string, error) {
			return s.server.Board.Render(), nil
		})
	if err != nil {
		return s.server.Board.Render()
	}

	return out
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := io.WriteString(w, line); err != nil {
		return err
	}

	if err := w.WriteByte('\n'); err != nil {
		return err
	}

	return w.Flush()
}
