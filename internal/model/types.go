// Package model defines shared data structures.
package model

import "time"

// Difficulty selects the word pool, timing table and leaderboard bucket.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"

	// AnyDifficulty matches every leaderboard bucket in availability checks.
	AnyDifficulty Difficulty = ""
)

// Valid reports whether d names a playable difficulty.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Hard
}

// SessionSummary captures a finished game session for telemetry storage.
type SessionSummary struct {
	Nickname       string
	Difficulty     Difficulty
	Score          int
	WordsCompleted int
	Errors         int
	DurationMs     int64
	StartedAt      time.Time
	EndedAt        time.Time
}

// LetterStat stores per-letter outcomes for a single session.
type LetterStat struct {
	Letter    string
	Correct   int
	Incorrect int
}

// LetterAggregate aggregates letter stats across sessions.
type LetterAggregate struct {
	Letter    string
	Correct   int
	Incorrect int
}
