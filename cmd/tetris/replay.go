package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagShowBoard bool
	flagDelete    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Re-simulate or delete a saved replay",
	Long: `Run a saved replay through the engine from its seed and inputs,
and check that it ends with the recorded score, lines and level.
With --delete the replay is removed instead.

Examples:
  tetris replay 3
  tetris replay 3 --board
  tetris replay 3 --delete`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagShowBoard, "board", false, "Print the final board")
	replayCmd.Flags().BoolVar(&flagDelete, "delete", false, "Delete the replay instead of verifying it")
}

func runReplay(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid replay id %q", args[0])
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening replay database: %w", err)
	}
	defer store.Close()

	loaded, err := store.ReplayByID(id)
	if err != nil {
		return fmt.Errorf("loading replay: %w", err)
	}
	if loaded == nil {
		return fmt.Errorf("no replay with id %d (run 'tetris replays' to list them)", id)
	}

	if flagDelete {
		if err := store.DeleteReplay(id); err != nil {
			return fmt.Errorf("deleting replay: %w", err)
		}
		fmt.Printf("Deleted replay %d\n", id)
		return nil
	}

	final, err := tetris.Replay(loaded.Recording())
	if flagShowBoard && final.Grid != nil {
		fmt.Print(formatBoard(final))
		fmt.Println()
	}
	fmt.Printf("Replay %d: seed %d, %d ticks, %d input events\n",
		loaded.ID, loaded.Seed, loaded.Ticks, len(loaded.Events))

	switch {
	case errors.Is(err, tetris.ErrReplayMismatch):
		fmt.Printf("MISMATCH: recorded score %d lines %d level %d, replayed score %d lines %d level %d\n",
			loaded.Score, loaded.Lines, loaded.Level, final.Score, final.Lines, final.Level)
		return fmt.Errorf("replay %d: %w", id, err)
	case err != nil:
		return fmt.Errorf("replaying: %w", err)
	}

	fmt.Printf("OK: score %d, lines %d, level %d\n", final.Score, final.Lines, final.Level)
	return nil
}
