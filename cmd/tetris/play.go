package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a new game in the terminal.

Controls:
  Left/Right or H/L  - Move
  Down or J          - Soft drop
  Up or X            - Rotate
  Space              - Hard drop
  P/Esc              - Pause
  R                  - Restart (after game over)
  Ctrl+S             - Save a screenshot
  Q/Ctrl+C           - Quit

Difficulty options:
  easy   - Pieces start slow
  normal - Default fall speed
  hard   - Pieces start fast
  fixed  - Use the config file's timing as is (default)

Finished games are saved as replays in the database.

Examples:
  tetris play
  tetris play --difficulty hard
  tetris play --seed 42
  tetris play --config ./my-tetris.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	// Fail before taking over the terminal
	if flagConfig != "" {
		if _, err := config.LoadTetris(flagConfig); err != nil {
			return err
		}
	}
	if _, err := config.ParsePreset(flagDifficulty); err != nil {
		return err
	}
	if !registry.Exists(tetris.GameID) {
		return fmt.Errorf("game %q is not registered", tetris.GameID)
	}

	cfg := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed

	tetris.SetConfigPath(flagConfig)
	tetris.SetDifficultyPreset(flagDifficulty)

	game, err := registry.Create(tetris.GameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	// Open replay storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open replay database: %v\n", err)
		logger.Warn("could not open replay database", "error", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(game, store, cfg, logger); err != nil {
		logger.Error("game stopped", "error", err)
		return fmt.Errorf("running game: %w", err)
	}

	if g, ok := game.(*tetris.Game); ok && g.ConfigError() != nil {
		logger.Warn("config fell back to defaults", "error", g.ConfigError())
	}
	return nil
}
