// tetris is a falling-block puzzle game for the terminal.
//
// Usage:
//
//	tetris play              - Play a game
//	tetris list              - List available games
//	tetris replays           - List saved replays
//	tetris replay <id>       - Re-simulate a saved replay and verify it
//	tetris sim               - Run a headless game with random inputs
//
// Global flags:
//
//	--fps <rate>       - Set tick rate (default: 60)
//	--seed <value>     - Set RNG seed for reproducible gameplay
//	--db <path>        - Set database path (default: ~/.arcade/tetris.db)
//	--log-level <lvl>  - debug, info, warn or error (default: info)
//	--log-file <path>  - Log destination (default: ~/.arcade/tetris.log)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Falling-block puzzle game for your terminal",
	Long: `Stack the falling pieces, clear full rows and survive as the
pieces speed up.

Available commands:
  play     - Play a game
  list     - Show all available games
  replays  - List saved replays
  replay   - Verify a saved replay
  sim      - Headless simulation with random inputs

Examples:
  tetris play
  tetris play --difficulty hard
  tetris replays --limit 5
  tetris replay 3
  tetris sim --ticks 5000 --seed 42`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/tetris.db", "Path to replay database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.arcade/tetris.log", "Log file (use - for stderr)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(simCmd)
}

// newLogger builds the logger from the global flags. The returned close
// function releases the log file, if any.
func newLogger() (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          "tetris",
		Level:           level,
	}

	// The game owns the terminal, so logs go to a file unless asked otherwise
	if flagLogFile == "-" || flagLogFile == "" {
		return log.NewWithOptions(os.Stderr, opts), func() {}, nil
	}

	path := expandHome(flagLogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return log.NewWithOptions(f, opts), func() { f.Close() }, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
