// Package server implements the multiplayer Minesweeper TCP server: it
// accepts connections, owns the single shared board, and runs one session
// goroutine per client. All sessions mutate the same board; players see
// each other's digs and flags on their next command.
package server

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/manuel-guillen/minesweeperServer/board"
	"github.com/manuel-guillen/minesweeperServer/cacher"
	"github.com/manuel-guillen/minesweeperServer/idgenerator"
	"github.com/manuel-guillen/minesweeperServer/logger"
	"github.com/manuel-guillen/minesweeperServer/safemap"
)

// renderTTL bounds how long a cached board render may be served. Entries
// are keyed by board generation, so the TTL only controls memory, not
// staleness.
const renderTTL = 2 * time.Second

// Server accepts Minesweeper client connections and delegates each one to
// a Session running in its own goroutine. The server owns the one shared
// Board for its whole lifetime; sessions borrow a reference and may never
// replace it.
type Server struct {
	Logger logger.Logger
	Addr   string
	Debug  bool
	Board  *board.Board

	listener net.Listener
	running  atomic.Bool
	players  atomic.Int32
	sessions *safemap.SafeMap[uint32, *Session]
	ids      *idgenerator.IdGenerator
	renders  cacher.Cacher[string]
	done     chan struct{}
}

// New creates a Server that will listen on addr and serve the given board.
//
// Parameters:
//   - addr: The "host:port" to listen on (e.g. ":4444")
//   - debug: When true, a mine hit does not disconnect the client
//   - b: The shared board all sessions play on
//   - log: Logger for server and session events
//
// Returns:
//   - A new Server; call Start to begin accepting connections
func New(addr string, debug bool, b *board.Board, log logger.Logger) *Server {
	return &Server{
		Logger:   log,
		Addr:     addr,
		Debug:    debug,
		Board:    b,
		sessions: safemap.NewSafeMap[uint32, *Session](),
		ids:      idgenerator.NewIdGenerator(0),
		renders:  cacher.NewMemoryCacher[string](renderTTL, time.Minute),
		done:     make(chan struct{}),
	}
}

// Start binds the listening socket and begins the accept loop in a
// goroutine. It is an error to start a server that is already running.
//
// Returns:
//   - An error if the server is already running or listening fails
func (s *Server) Start() error {
	if s.running.Load() {
		s.Logger.Error("server already running")
		return fmt.Errorf("server already running on %s", s.Addr)
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		s.Logger.Error("server failed to start", logger.Field{Key: "error", Value: err})
		return fmt.Errorf("server failed to start on %s: %w", s.Addr, err)
	}

	s.listener = ln
	s.done = make(chan struct{})
	s.running.Store(true)

	s.Logger.Info("minesweeper server started",
		logger.Field{Key: "addr", Value: ln.Addr().String()},
		logger.Field{Key: "board", Value: fmt.Sprintf("%dx%d", s.Board.Width(), s.Board.Height())},
		logger.Field{Key: "debug", Value: s.Debug},
	)
	go s.AcceptLoop()

	return nil
}

// Stop stops the server: the accept loop exits and every live session is
// closed. Safe to call more than once and on a server whose listener has
// already failed.
func (s *Server) Stop() {
	if s.listener == nil {
		s.Logger.Info("server not running")
		return
	}

	s.running.Store(false)
	_ = s.listener.Close()

	s.sessions.Range(func(id uint32, session *Session) bool {
		_ = session.Close()
		return true
	})

	s.Logger.Info("minesweeper server stopped")
}

// ListenAddr returns the address the server is listening on, or nil if the
// server has not started. Useful when Addr was ":0".
//
// Returns:
//   - The bound listener address, or nil
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Players returns the number of currently connected players.
//
// Returns:
//   - The live connection count
func (s *Server) Players() int {
	return int(s.players.Load())
}

// Done returns a channel that is closed when the accept loop exits, either
// because Stop was called or because the listening socket failed.
//
// Returns:
//   - A channel closed when the server stops accepting connections
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// AcceptLoop accepts incoming connections until the server is stopped. For
// each connection it increments the player counter, registers a session,
// and runs the session in a new goroutine. Session I/O failures are
// confined to their session and never reach this loop; a listening-socket
// failure is fatal, reported, and terminates the loop.
func (s *Server) AcceptLoop() {
	defer close(s.done)

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}

			s.Logger.Error("listening socket failed, no longer accepting connections",
				logger.Field{Key: "error", Value: err})
			s.running.Store(false)
			return
		}

		players := s.players.Add(1)
		id := s.ids.Id()
		session := newSession(id, conn, s)
		s.sessions.Store(id, session)

		s.Logger.Info("player connected",
			logger.Field{Key: "session", Value: id},
			logger.Field{Key: "remote", Value: conn.RemoteAddr().String()},
			logger.Field{Key: "players", Value: players},
		)
		go session.Handle()
	}
}

// removeSession deregisters a finished session and decrements the player
// counter. Called exactly once per session, from Session.Handle's exit
// path.
func (s *Server) removeSession(id uint32) {
	s.sessions.Delete(id)
	players := s.players.Add(-1)
	s.Logger.Info("player disconnected",
		logger.Field{Key: "session", Value: id},
		logger.Field{Key: "players", Value: players},
	)
}
