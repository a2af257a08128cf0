// Command minesweeper-server starts a multiplayer Minesweeper server.
//
// Any number of clients may connect over TCP and play on one shared board
// using a line-oriented text protocol (look, dig, flag, deflag, help,
// bye). The board starts either with random mine placement (--size), from
// a board description file (--file), or restored from a Redis snapshot of
// a previous run (--redis).
//
// # Usage
//
//	# Random 10x10 board on the default port
//	minesweeper-server
//
//	# Debug mode: a mine hit does not disconnect the client
//	minesweeper-server --debug --port 4444 --size 42,58
//
//	# Load a board description and persist snapshots to Redis
//	minesweeper-server --file board.txt --redis localhost:6379
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/manuel-guillen/minesweeperServer/board"
	"github.com/manuel-guillen/minesweeperServer/logger"
	"github.com/manuel-guillen/minesweeperServer/server"
	"github.com/manuel-guillen/minesweeperServer/snapshot"
)

const (
	defaultPort = 4444
	maximumPort = 65535
	defaultSize = "10,10"

	snapshotInterval = 5 * time.Second
)

var (
	flagPort     int
	flagDebug    bool
	flagSize     string
	flagFile     string
	flagRedis    string
	flagLogLevel string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "minesweeper-server",
		Short:        "Multiplayer Minesweeper server over a text protocol",
		RunE:         runServer,
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&flagPort, "port", defaultPort, "TCP port to listen on (0-65535)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "keep clients connected after a mine hit")
	cmd.Flags().StringVar(&flagSize, "size", defaultSize, "random board dimensions as WIDTH,HEIGHT")
	cmd.Flags().StringVar(&flagFile, "file", "", "board description file to load")
	cmd.Flags().StringVar(&flagRedis, "redis", "", "redis address for board snapshot persistence (optional)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "minimum log level (debug|info|warn|error)")
	cmd.MarkFlagsMutuallyExclusive("size", "file")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("bad --log-level %q: %w", flagLogLevel, err)
	}

	log := logger.New(os.Stdout, "minesweeper-server", level)

	if flagPort < 0 || flagPort > maximumPort {
		return fmt.Errorf("port %d out of range [0,%d]", flagPort, maximumPort)
	}

	var store snapshot.Store
	if flagRedis != "" {
		client := redis.NewClient(&redis.Options{Addr: flagRedis})
		store = snapshot.NewRedisStore(client, "")
	}

	b, err := resolveBoard(cmd, store, log)
	if err != nil {
		return err
	}

	srv := server.New(fmt.Sprintf(":%d", flagPort), flagDebug, b, log)
	if err := srv.Start(); err != nil {
		return err
	}

	// Operator-only view of where the mines are; never sent to clients.
	fmt.Println("Board - Mine Layout:")
	fmt.Println(b.RenderMines())

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saverCtx, cancelSaver := context.WithCancel(context.Background())
	defer cancelSaver()

	var wg sync.WaitGroup
	if store != nil {
		saver := &snapshot.Saver{
			Board:    b,
			Store:    store,
			Interval: snapshotInterval,
			Logger:   log,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			saver.Run(saverCtx)
		}()
	}

	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutting down")
	case <-srv.Done():
		// The listening socket failed; the error was already logged.
		runErr = fmt.Errorf("server stopped accepting connections")
	}

	srv.Stop()
	cancelSaver()
	wg.Wait()

	return runErr
}

// resolveBoard builds the starting board from the configured source:
// a board description file, a restored snapshot, or random placement.
func resolveBoard(cmd *cobra.Command, store snapshot.Store, log logger.Logger) (*board.Board, error) {
	if flagFile != "" {
		b, err := board.LoadFile(flagFile)
		if err != nil {
			return nil, err
		}

		log.Info("board loaded from file",
			logger.Field{Key: "file", Value: flagFile},
			logger.Field{Key: "board", Value: fmt.Sprintf("%dx%d", b.Width(), b.Height())},
		)
		return b, nil
	}

	width, height, err := parseSize(flagSize)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if b, ok := restoreBoard(store, width, height, cmd.Flags().Changed("size"), log); ok {
			return b, nil
		}
	}

	return board.NewRandom(width, height)
}

// restoreBoard tries to resume the previous run's board from the snapshot
// store. An explicitly requested size wins over a snapshot of different
// dimensions.
func restoreBoard(store snapshot.Store, width, height int, sizeRequested bool, log logger.Logger) (*board.Board, bool) {
	snap, err := store.Load(context.Background())
	if err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			log.Warn("snapshot load failed", logger.Field{Key: "error", Value: err})
		}

		return nil, false
	}

	if sizeRequested && (snap.Width != width || snap.Height != height) {
		log.Warn("ignoring snapshot with different dimensions",
			logger.Field{Key: "snapshot", Value: fmt.Sprintf("%dx%d", snap.Width, snap.Height)},
			logger.Field{Key: "requested", Value: fmt.Sprintf("%dx%d", width, height)},
		)
		return nil, false
	}

	b, err := board.FromSnapshot(snap)
	if err != nil {
		log.Warn("snapshot restore failed", logger.Field{Key: "error", Value: err})
		return nil, false
	}

	log.Info("board restored from snapshot",
		logger.Field{Key: "board", Value: fmt.Sprintf("%dx%d", b.Width(), b.Height())},
		logger.Field{Key: "generation", Value: snap.Generation},
	)
	return b, true
}

// parseSize parses the --size flag's "WIDTH,HEIGHT" value.
func parseSize(size string) (width, height int, err error) {
	parts := strings.Split(size, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad --size %q, want WIDTH,HEIGHT", size)
	}

	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad --size width %q: %w", parts[0], err)
	}

	height, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad --size height %q: %w", parts[1], err)
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("bad --size %q, dimensions must be positive", size)
	}

	return width, height, nil
}
