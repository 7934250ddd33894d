package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var flagLimit int

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List saved replays",
	Long: `Display the most recent saved replays, newest first.

Examples:
  tetris replays
  tetris replays --limit 5`,
	Args: cobra.NoArgs,
	RunE: runReplays,
}

func init() {
	replaysCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of replays to show")
}

func runReplays(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening replay database: %w", err)
	}
	defer store.Close()

	replays, err := store.RecentReplays(flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving replays: %w", err)
	}

	if len(replays) == 0 {
		fmt.Println("No replays yet. Finish a game to record one!")
		return nil
	}

	fmt.Println("Saved replays")
	fmt.Println()
	fmt.Printf("  %5s  %-8s  %8s  %5s  %5s  %8s  %s\n", "ID", "Mode", "Score", "Lines", "Level", "Ticks", "Date")
	fmt.Printf("  %5s  %-8s  %8s  %5s  %5s  %8s  %s\n", "--", "----", "-----", "-----", "-----", "-----", "----")
	for _, r := range replays {
		fmt.Printf("  %5d  %-8s  %8d  %5d  %5d  %8d  %s\n",
			r.ID, r.Preset, r.Score, r.Lines, r.Level, r.Ticks,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
	fmt.Println("Run 'tetris replay <id>' to verify a replay.")
	return nil
}
