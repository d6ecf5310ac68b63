// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/woohung/morse-game/internal/game"
	"github.com/woohung/morse-game/internal/keyer"
	"github.com/woohung/morse-game/internal/needle"
)

const (
	AppName       = "morse-game"
	ConfigType    = "yaml"
	DefaultConfig = `# Morse Game Configuration

# Keying thresholds (seconds)
dot_duration: 0.16      # Presses shorter than the dot/dash boundary register a dot
dash_duration: 0.48     # Presses at or past the boundary register a dash
letter_gap: 0.96        # Silence after the last symbol that completes a character
word_gap: 1.12          # Silence that completes a word
debounce: 0             # Minimum press duration; 0 accepts every release

# Needle feedback
baseline_force: 0.15    # Resting deflection while the key is idle
dot_amplitude: 0.55     # Deflection target for a dot
dash_amplitude: 0.85    # Deflection target for a dash
needle_steps: 30        # Interpolation steps per transition
dot_transition_ms: 60   # Dot kick duration
dash_transition_ms: 120 # Dash kick duration (slower, larger)
release_transition_ms: 150
join_timeout_ms: 30     # Bound on waiting for a cancelled transition

# Easy difficulty
easy_word_time_limit: 15.0   # Base seconds per word
easy_time_per_letter: 2.5    # Extra seconds per letter
easy_o_letter_bonus: 1.5     # Extra seconds per 'O' in the word
easy_game_duration: 120.0    # Session length in seconds
easy_streak_bonus_at: 5      # One-shot bonus when the streak reaches this (0 disables)
easy_streak_bonus: 10.0      # One-shot bonus seconds

# Hard difficulty
hard_word_time_limit: 8.0
hard_time_per_letter: 2.0
hard_o_letter_bonus: 1.0
hard_game_duration: 90.0
hard_bonus_every: 3          # Repeating bonus every Nth consecutive word (0 disables)
hard_bonus: 15.0             # Repeating bonus seconds

# Loop
tick_ms: 50             # Game loop tick interval

# Storage
scores_file: ""         # High-score JSON path; empty = <config dir>/high_scores.json
stats_db: ""            # Telemetry SQLite path; empty = <config dir>/telemetry.db

# Output
debug: false            # Enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Keying thresholds, seconds
	DotDuration  float64 `mapstructure:"dot_duration"`
	DashDuration float64 `mapstructure:"dash_duration"`
	LetterGap    float64 `mapstructure:"letter_gap"`
	WordGap      float64 `mapstructure:"word_gap"`
	Debounce     float64 `mapstructure:"debounce"`

	// Needle feedback
	BaselineForce       float64 `mapstructure:"baseline_force"`
	DotAmplitude        float64 `mapstructure:"dot_amplitude"`
	DashAmplitude       float64 `mapstructure:"dash_amplitude"`
	NeedleSteps         int     `mapstructure:"needle_steps"`
	DotTransitionMs     int     `mapstructure:"dot_transition_ms"`
	DashTransitionMs    int     `mapstructure:"dash_transition_ms"`
	ReleaseTransitionMs int     `mapstructure:"release_transition_ms"`
	JoinTimeoutMs       int     `mapstructure:"join_timeout_ms"`

	// Easy difficulty
	EasyWordTimeLimit float64 `mapstructure:"easy_word_time_limit"`
	EasyTimePerLetter float64 `mapstructure:"easy_time_per_letter"`
	EasyOLetterBonus  float64 `mapstructure:"easy_o_letter_bonus"`
	EasyGameDuration  float64 `mapstructure:"easy_game_duration"`
	EasyStreakBonusAt int     `mapstructure:"easy_streak_bonus_at"`
	EasyStreakBonus   float64 `mapstructure:"easy_streak_bonus"`

	// Hard difficulty
	HardWordTimeLimit float64 `mapstructure:"hard_word_time_limit"`
	HardTimePerLetter float64 `mapstructure:"hard_time_per_letter"`
	HardOLetterBonus  float64 `mapstructure:"hard_o_letter_bonus"`
	HardGameDuration  float64 `mapstructure:"hard_game_duration"`
	HardBonusEvery    int     `mapstructure:"hard_bonus_every"`
	HardBonus         float64 `mapstructure:"hard_bonus"`

	// Loop
	TickMs int `mapstructure:"tick_ms"`

	// Storage
	ScoresFile string `mapstructure:"scores_file"`
	StatsDB    string `mapstructure:"stats_db"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/morse-game/
func Init() error {
	// Set defaults
	viper.SetDefault("dot_duration", 0.16)
	viper.SetDefault("dash_duration", 0.48)
	viper.SetDefault("letter_gap", 0.96)
	viper.SetDefault("word_gap", 1.12)
	viper.SetDefault("debounce", 0.0)
	viper.SetDefault("baseline_force", 0.15)
	viper.SetDefault("dot_amplitude", 0.55)
	viper.SetDefault("dash_amplitude", 0.85)
	viper.SetDefault("needle_steps", 30)
	viper.SetDefault("dot_transition_ms", 60)
	viper.SetDefault("dash_transition_ms", 120)
	viper.SetDefault("release_transition_ms", 150)
	viper.SetDefault("join_timeout_ms", 30)
	viper.SetDefault("easy_word_time_limit", 15.0)
	viper.SetDefault("easy_time_per_letter", 2.5)
	viper.SetDefault("easy_o_letter_bonus", 1.5)
	viper.SetDefault("easy_game_duration", 120.0)
	viper.SetDefault("easy_streak_bonus_at", 5)
	viper.SetDefault("easy_streak_bonus", 10.0)
	viper.SetDefault("hard_word_time_limit", 8.0)
	viper.SetDefault("hard_time_per_letter", 2.0)
	viper.SetDefault("hard_o_letter_bonus", 1.0)
	viper.SetDefault("hard_game_duration", 90.0)
	viper.SetDefault("hard_bonus_every", 3)
	viper.SetDefault("hard_bonus", 15.0)
	viper.SetDefault("tick_ms", 50)
	viper.SetDefault("scores_file", "")
	viper.SetDefault("stats_db", "")
	viper.SetDefault("debug", false)

	// Support both config.yaml and .config.yaml
	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		// Try config.yaml as fallback
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config found - create default in ~/.config/morse-game/
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			// Read the newly created config
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Keying thresholds
	if s.DotDuration <= 0 {
		errs = append(errs, fmt.Errorf("dot_duration must be positive, got %v", s.DotDuration))
	}
	if s.DashDuration <= s.DotDuration {
		errs = append(errs, fmt.Errorf("dash_duration must exceed dot_duration, got %v <= %v", s.DashDuration, s.DotDuration))
	}
	if s.LetterGap <= 0 {
		errs = append(errs, fmt.Errorf("letter_gap must be positive, got %v", s.LetterGap))
	}
	if s.WordGap < s.LetterGap {
		errs = append(errs, fmt.Errorf("word_gap must be at least letter_gap, got %v < %v", s.WordGap, s.LetterGap))
	}
	if s.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %v", s.Debounce))
	}

	// Needle feedback
	if s.BaselineForce < 0 || s.BaselineForce > 1 {
		errs = append(errs, fmt.Errorf("baseline_force must be between 0.0 and 1.0, got %v", s.BaselineForce))
	}
	if s.DotAmplitude <= 0 || s.DotAmplitude > 1 {
		errs = append(errs, fmt.Errorf("dot_amplitude must be between 0.0 and 1.0, got %v", s.DotAmplitude))
	}
	if s.DashAmplitude < s.DotAmplitude || s.DashAmplitude > 1 {
		errs = append(errs, fmt.Errorf("dash_amplitude must be between dot_amplitude and 1.0, got %v", s.DashAmplitude))
	}
	if s.NeedleSteps < 2 || s.NeedleSteps > 200 {
		errs = append(errs, fmt.Errorf("needle_steps must be between 2 and 200, got %d", s.NeedleSteps))
	}
	if s.DotTransitionMs <= 0 || s.DashTransitionMs <= 0 || s.ReleaseTransitionMs <= 0 {
		errs = append(errs, fmt.Errorf("transition durations must be positive, got %d/%d/%d", s.DotTransitionMs, s.DashTransitionMs, s.ReleaseTransitionMs))
	}
	if s.JoinTimeoutMs <= 0 || s.JoinTimeoutMs > 1000 {
		errs = append(errs, fmt.Errorf("join_timeout_ms must be between 1 and 1000, got %d", s.JoinTimeoutMs))
	}

	// Difficulty tables
	if err := s.GameConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	// Loop
	if s.TickMs < 10 || s.TickMs > 500 {
		errs = append(errs, fmt.Errorf("tick_ms must be between 10 and 500, got %d", s.TickMs))
	}

	return errors.Join(errs...)
}

// KeyerThresholds converts the keying settings into accumulator thresholds.
func (s *Settings) KeyerThresholds() keyer.Thresholds {
	return keyer.Thresholds{
		Dot:       secs(s.DotDuration),
		Dash:      secs(s.DashDuration),
		LetterGap: secs(s.LetterGap),
		WordGap:   secs(s.WordGap),
		Debounce:  secs(s.Debounce),
	}
}

// NeedleConfig converts the needle settings into a controller config.
func (s *Settings) NeedleConfig() needle.Config {
	return needle.Config{
		BaselineForce:     s.BaselineForce,
		DotAmplitude:      s.DotAmplitude,
		DashAmplitude:     s.DashAmplitude,
		Steps:             s.NeedleSteps,
		DotTransition:     time.Duration(s.DotTransitionMs) * time.Millisecond,
		DashTransition:    time.Duration(s.DashTransitionMs) * time.Millisecond,
		ReleaseTransition: time.Duration(s.ReleaseTransitionMs) * time.Millisecond,
		JoinTimeout:       time.Duration(s.JoinTimeoutMs) * time.Millisecond,
	}
}

// GameConfig converts the difficulty tables into machine timing rules.
func (s *Settings) GameConfig() game.Config {
	return game.Config{
		Easy: game.DifficultyConfig{
			WordBaseTime:       secs(s.EasyWordTimeLimit),
			PerLetterTime:      secs(s.EasyTimePerLetter),
			OLetterBonus:       secs(s.EasyOLetterBonus),
			SessionDuration:    secs(s.EasyGameDuration),
			OneShotBonusAt:     s.EasyStreakBonusAt,
			OneShotBonusAmount: secs(s.EasyStreakBonus),
		},
		Hard: game.DifficultyConfig{
			WordBaseTime:      secs(s.HardWordTimeLimit),
			PerLetterTime:     secs(s.HardTimePerLetter),
			OLetterBonus:      secs(s.HardOLetterBonus),
			SessionDuration:   secs(s.HardGameDuration),
			RepeatBonusEvery:  s.HardBonusEvery,
			RepeatBonusAmount: secs(s.HardBonus),
		},
	}
}

// TickInterval returns the game loop tick interval.
func (s *Settings) TickInterval() time.Duration {
	return time.Duration(s.TickMs) * time.Millisecond
}

// ScoresPath resolves the high-score file path, defaulting to the app's
// config directory.
func (s *Settings) ScoresPath() string {
	if s.ScoresFile != "" {
		return s.ScoresFile
	}
	return filepath.Join(appDataDir(), "high_scores.json")
}

// StatsPath resolves the telemetry database path, defaulting to the app's
// config directory.
func (s *Settings) StatsPath() string {
	if s.StatsDB != "" {
		return s.StatsDB
	}
	return filepath.Join(appDataDir(), "telemetry.db")
}

func appDataDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
