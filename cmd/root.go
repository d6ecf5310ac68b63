// cmd/root.go
package cmd

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/woohung/morse-game/internal/config"
	"github.com/woohung/morse-game/internal/game"
	"github.com/woohung/morse-game/internal/keyer"
	"github.com/woohung/morse-game/internal/needle"
	"github.com/woohung/morse-game/internal/scores"
	"github.com/woohung/morse-game/internal/stats"
	"github.com/woohung/morse-game/internal/tui"
	"github.com/woohung/morse-game/internal/words"
)

var rootCmd = &cobra.Command{
	Use:   "morse-game",
	Short: "Telegraph vocabulary game played in Morse code",
	Long: `A timed vocabulary game keyed in Morse code. The space bar is the
telegraph key; decoded characters are matched letter by letter against the
target word while a simulated analog needle gives keying feedback.`,
	RunE: runGame,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().Float64("dot", 0.16, "dot duration threshold in seconds")
	rootCmd.PersistentFlags().Float64("dash", 0.48, "dash duration threshold in seconds")
	rootCmd.PersistentFlags().String("scores-file", "", "high-score file path")
	rootCmd.PersistentFlags().String("stats-db", "", "telemetry database path")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("dot_duration", rootCmd.PersistentFlags().Lookup("dot"))
	viper.BindPFlag("dash_duration", rootCmd.PersistentFlags().Lookup("dash"))
	viper.BindPFlag("scores_file", rootCmd.PersistentFlags().Lookup("scores-file"))
	viper.BindPFlag("stats_db", rootCmd.PersistentFlags().Lookup("stats-db"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

func runGame(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return err
	}

	mgr, err := scores.NewManager(settings.ScoresPath())
	if err != nil {
		return fmt.Errorf("open scores: %w", err)
	}

	// Telemetry is optional: a broken database loses history, not the game.
	store, err := stats.Open(settings.StatsPath())
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		store = nil
	}
	if store != nil {
		defer func() {
			if cerr := store.Close(); cerr != nil {
				log.Printf("close telemetry: %v", cerr)
			}
		}()
	}

	// No hardware driver is registered here, so probing degrades to the
	// simulated needle rendered by the TUI.
	ctrl, err := needle.New(settings.NeedleConfig(), needle.Probe(nil))
	if err != nil {
		return fmt.Errorf("needle controller: %w", err)
	}
	defer func() {
		if cerr := ctrl.Close(); cerr != nil {
			log.Printf("close needle: %v", cerr)
		}
	}()

	acc, err := keyer.New(settings.KeyerThresholds(), ctrl)
	if err != nil {
		return fmt.Errorf("key accumulator: %w", err)
	}

	machine, err := game.New(settings.GameConfig(), words.NewGenerator(nil), mgr, nil)
	if err != nil {
		return fmt.Errorf("game machine: %w", err)
	}

	model := tui.NewModel(tui.Options{
		Machine: machine,
		Keyer:   acc,
		Needle:  ctrl,
		Scores:  mgr,
		Stats:   store,
		Tick:    settings.TickInterval(),
		Debug:   settings.Debug,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
