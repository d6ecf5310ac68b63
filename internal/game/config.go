package game

import (
	"errors"
	"strings"
	"time"

	"github.com/woohung/morse-game/internal/model"
)

var (
	// ErrInvalidWordBaseTime indicates a non-positive per-word base time
	ErrInvalidWordBaseTime = errors.New("word base time must be positive")
	// ErrInvalidPerLetterTime indicates a non-positive per-letter time
	ErrInvalidPerLetterTime = errors.New("per-letter time must be positive")
	// ErrNegativeOBonus indicates a negative O-letter bonus
	ErrNegativeOBonus = errors.New("o-letter bonus must not be negative")
	// ErrInvalidSessionDuration indicates a non-positive session duration
	ErrInvalidSessionDuration = errors.New("session duration must be positive")
	// ErrNegativeBonus indicates a negative streak bonus amount
	ErrNegativeBonus = errors.New("streak bonus amount must not be negative")
)

// DifficultyConfig holds the timing rules for one difficulty. The two bonus
// policies are structurally different and both live here: RepeatBonus fires
// on every positive multiple of RepeatBonusEvery (hard mode), OneShotBonus
// fires once when the streak reaches OneShotBonusAt (easy mode). A zero
// Every/At disables the respective policy.
type DifficultyConfig struct {
	WordBaseTime    time.Duration
	PerLetterTime   time.Duration
	OLetterBonus    time.Duration
	SessionDuration time.Duration

	RepeatBonusEvery   int
	RepeatBonusAmount  time.Duration
	OneShotBonusAt     int
	OneShotBonusAmount time.Duration
}

// Validate checks the timing rules, reporting every violation.
func (c DifficultyConfig) Validate() error {
	var errs []error
	if c.WordBaseTime <= 0 {
		errs = append(errs, ErrInvalidWordBaseTime)
	}
	if c.PerLetterTime <= 0 {
		errs = append(errs, ErrInvalidPerLetterTime)
	}
	if c.OLetterBonus < 0 {
		errs = append(errs, ErrNegativeOBonus)
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, ErrInvalidSessionDuration)
	}
	if c.RepeatBonusAmount < 0 || c.OneShotBonusAmount < 0 {
		errs = append(errs, ErrNegativeBonus)
	}
	return errors.Join(errs...)
}

// WordTimeLimit computes the deadline for one word: base time, plus
// per-letter time, plus a bonus for each 'O' (its code is all dashes and
// slow to key). Monotonically non-decreasing in word length.
func (c DifficultyConfig) WordTimeLimit(word string) time.Duration {
	oCount := strings.Count(strings.ToUpper(word), "O")
	return c.WordBaseTime +
		time.Duration(len(word))*c.PerLetterTime +
		time.Duration(oCount)*c.OLetterBonus
}

// Config pairs the two difficulty tables.
type Config struct {
	Easy DifficultyConfig
	Hard DifficultyConfig
}

// Validate checks both difficulty tables.
func (c Config) Validate() error {
	return errors.Join(c.Easy.Validate(), c.Hard.Validate())
}

func (c Config) ForDifficulty(d model.Difficulty) DifficultyConfig {
	if d == model.Hard {
		return c.Hard
	}
	return c.Easy
}

// DefaultConfig mirrors the classic timing tables: easy gives two minutes
// and gentler per-word deadlines, hard gives ninety seconds and a repeating
// +15s bonus every third consecutive word.
func DefaultConfig() Config {
	return Config{
		Easy: DifficultyConfig{
			WordBaseTime:       15 * time.Second,
			PerLetterTime:      2500 * time.Millisecond,
			OLetterBonus:       1500 * time.Millisecond,
			SessionDuration:    120 * time.Second,
			OneShotBonusAt:     5,
			OneShotBonusAmount: 10 * time.Second,
		},
		Hard: DifficultyConfig{
			WordBaseTime:      8 * time.Second,
			PerLetterTime:     2 * time.Second,
			OLetterBonus:      time.Second,
			SessionDuration:   90 * time.Second,
			RepeatBonusEvery:  3,
			RepeatBonusAmount: 15 * time.Second,
		},
	}
}
