// internal/keyer/keyer.go
// Package keyer converts timed press/release events from the telegraph key
// into decoded characters.
package keyer

import (
	"errors"
	"time"

	"github.com/woohung/morse-game/internal/morse"
)

var (
	// ErrInvalidDotDuration indicates the dot duration must be positive
	ErrInvalidDotDuration = errors.New("dot duration must be positive")
	// ErrInvalidDashDuration indicates the dash duration must exceed the dot duration
	ErrInvalidDashDuration = errors.New("dash duration must exceed dot duration")
	// ErrInvalidLetterGap indicates the letter gap must be positive
	ErrInvalidLetterGap = errors.New("letter gap must be positive")
	// ErrInvalidWordGap indicates the word gap must be positive
	ErrInvalidWordGap = errors.New("word gap must be positive")
	// ErrInvalidDebounce indicates the debounce window must not be negative
	ErrInvalidDebounce = errors.New("debounce must not be negative")
)

// Thresholds holds the duration boundaries used to classify key presses.
// A debounce of zero accepts every release.
type Thresholds struct {
	Dot       time.Duration // nominal dot press duration (from config: dot_duration)
	Dash      time.Duration // nominal dash press duration (from config: dash_duration)
	LetterGap time.Duration // silence after which the pending sequence is decoded (from config: letter_gap)
	WordGap   time.Duration // silence after which a word boundary is assumed (from config: word_gap)
	Debounce  time.Duration // presses shorter than this are contact bounce (from config: debounce)
}

// DashBoundary returns the dot/dash decision boundary, the midpoint of the
// nominal dot and dash durations.
func (t Thresholds) DashBoundary() time.Duration {
	return (t.Dot + t.Dash) / 2
}

// Validate checks the threshold invariants.
func (t Thresholds) Validate() error {
	if t.Dot <= 0 {
		return ErrInvalidDotDuration
	}
	if t.Dash <= t.Dot {
		return ErrInvalidDashDuration
	}
	if t.LetterGap <= 0 {
		return ErrInvalidLetterGap
	}
	if t.WordGap <= 0 {
		return ErrInvalidWordGap
	}
	if t.Debounce < 0 {
		return ErrInvalidDebounce
	}
	return nil
}

// Feedback receives actuator commands keyed to the press lifecycle.
// Implementations must be non-blocking and fast - commands are issued from
// the input loop.
type Feedback interface {
	KeyPressed()
	KeyReleased()
	ApplyDot()
	ApplyDash()
}

// DecodedCallback is called when the pending sequence decodes to a character.
// Unknown patterns never reach the callback; the buffer is simply cleared.
type DecodedCallback func(ch rune)

// Accumulator assembles dot/dash symbols from press durations and decodes
// them once a letter gap of silence is observed. It is exclusively owned by
// the active mode and is not safe for concurrent use.
type Accumulator struct {
	thresholds Thresholds
	feedback   Feedback

	seq        []byte
	lastSymbol time.Time
	hasSymbol  bool

	callback DecodedCallback
	now      func() time.Time
}

// New creates an accumulator. The feedback sink may be nil.
func New(thresholds Thresholds, feedback Feedback) (*Accumulator, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Accumulator{
		thresholds: thresholds,
		feedback:   feedback,
		now:        time.Now,
	}, nil
}

// SetCallback sets the callback for decoded characters.
func (a *Accumulator) SetCallback(cb DecodedCallback) {
	a.callback = cb
}

// OnPress records a key-down. No symbol is appended until release.
func (a *Accumulator) OnPress() {
	if a.feedback != nil {
		a.feedback.KeyPressed()
	}
}

// OnRelease classifies the press duration and appends the symbol. Presses
// shorter than the debounce window are discarded as contact bounce; the
// release itself is still forwarded to the feedback sink.
func (a *Accumulator) OnRelease(pressDuration time.Duration) {
	if pressDuration >= a.thresholds.Debounce {
		if pressDuration < a.thresholds.DashBoundary() {
			a.seq = append(a.seq, '.')
			if a.feedback != nil {
				a.feedback.ApplyDot()
			}
		} else {
			a.seq = append(a.seq, '-')
			if a.feedback != nil {
				a.feedback.ApplyDash()
			}
		}
		a.lastSymbol = a.now()
		a.hasSymbol = true
	}
	if a.feedback != nil {
		a.feedback.KeyReleased()
	}
}

// CheckTimeout decodes the pending sequence once a letter gap of silence has
// passed since the last symbol. The buffer is cleared whether or not the
// decode succeeds; an unknown pattern is silently dropped so the operator can
// retype the character.
func (a *Accumulator) CheckTimeout(now time.Time) {
	if len(a.seq) == 0 || !a.hasSymbol {
		return
	}
	if now.Sub(a.lastSymbol) < a.thresholds.LetterGap {
		return
	}
	ch, err := morse.Decode(string(a.seq))
	a.Clear()
	if err == nil && a.callback != nil {
		a.callback(ch)
	}
}

// Clear resets the pending sequence, independent of any timeout.
func (a *Accumulator) Clear() {
	a.seq = a.seq[:0]
	a.hasSymbol = false
}

// Sequence returns the pending symbol string for display.
func (a *Accumulator) Sequence() string {
	return string(a.seq)
}
