// cmd/stats.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woohung/morse-game/internal/config"
	"github.com/woohung/morse-game/internal/model"
	"github.com/woohung/morse-game/internal/stats"
)

var (
	statsDifficulty string
	statsWindow     int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print session telemetry and the weakest letters",
	Long: `Print stored sessions and the letters with the worst accuracy over
the most recent sessions, for targeted practice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Get()
		if err != nil {
			return err
		}
		store, err := stats.Open(settings.StatsPath())
		if err != nil {
			return fmt.Errorf("open telemetry: %w", err)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "close telemetry: %v\n", cerr)
			}
		}()

		diff := model.Difficulty(statsDifficulty)
		if statsDifficulty != "" && !diff.Valid() {
			return fmt.Errorf("unknown difficulty %q (easy, hard or empty for all)", statsDifficulty)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		sessions, err := store.ListSessions(ctx, diff, nil)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "no sessions recorded yet")
			return nil
		}

		fmt.Fprintf(out, "%-16s %-6s %6s %6s %7s %9s  %s\n", "NICKNAME", "DIFF", "SCORE", "WORDS", "ERRORS", "DURATION", "ENDED")
		for _, s := range sessions {
			fmt.Fprintf(out, "%-16s %-6s %6d %6d %7d %8.1fs  %s\n",
				s.Nickname, s.Difficulty, s.Score, s.WordsCompleted, s.Errors,
				float64(s.DurationMs)/1000, s.EndedAt.Format("2006-01-02 15:04"))
		}

		weak, err := store.WeakLetters(ctx, statsWindow, diff)
		if err != nil {
			return fmt.Errorf("weak letters: %w", err)
		}
		if len(weak) > 0 {
			fmt.Fprintf(out, "\nweakest letters over the last %d sessions:\n", statsWindow)
			for i, agg := range weak {
				if i >= 5 {
					break
				}
				total := agg.Correct + agg.Incorrect
				acc := 0.0
				if total > 0 {
					acc = float64(agg.Correct) / float64(total) * 100
				}
				fmt.Fprintf(out, "  %s  %5.1f%%  (%d correct, %d wrong)\n", agg.Letter, acc, agg.Correct, agg.Incorrect)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsDifficulty, "difficulty", "d", "", "filter by difficulty (easy, hard or empty for all)")
	statsCmd.Flags().IntVarP(&statsWindow, "window", "w", 10, "number of recent sessions for weak-letter aggregation")
	rootCmd.AddCommand(statsCmd)
}
