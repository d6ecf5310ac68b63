// cmd/scores.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woohung/morse-game/internal/config"
	"github.com/woohung/morse-game/internal/model"
	"github.com/woohung/morse-game/internal/scores"
)

var (
	scoresDifficulty string
	scoresLimit      int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Print the high-score leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Get()
		if err != nil {
			return err
		}
		mgr, err := scores.NewManager(settings.ScoresPath())
		if err != nil {
			return fmt.Errorf("open scores: %w", err)
		}

		diff := model.Difficulty(scoresDifficulty)
		if !diff.Valid() {
			return fmt.Errorf("unknown difficulty %q (easy or hard)", scoresDifficulty)
		}

		top := mgr.TopScores(diff, scoresLimit)
		if len(top) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no scores on the %s board yet\n", diff)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-4s %-16s %6s %6s %7s %8s  %s\n", "#", "NICKNAME", "SCORE", "WORDS", "ERRORS", "TIME", "DATE")
		for i, rec := range top {
			fmt.Fprintf(out, "%-4d %-16s %6d %6d %7d %7.1fs  %s\n",
				i+1, rec.Nickname, rec.Score, rec.WordsCompleted, rec.Errors, rec.TimeTaken, rec.Date)
		}

		bs := mgr.BoardStats(diff)
		fmt.Fprintf(out, "\n%d games · %d players · best %d · avg %.1f\n",
			bs.TotalGames, bs.UniquePlayers, bs.HighestScore, bs.AverageScore)
		return nil
	},
}

func init() {
	scoresCmd.Flags().StringVarP(&scoresDifficulty, "difficulty", "d", "easy", "leaderboard to print (easy or hard)")
	scoresCmd.Flags().IntVarP(&scoresLimit, "limit", "n", 10, "number of entries (0 for all)")
	rootCmd.AddCommand(scoresCmd)
}
