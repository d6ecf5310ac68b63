// Package stats handles SQLite persistence of session telemetry. The
// leaderboard lives in a JSON file; this store keeps the richer per-letter
// history used for practice suggestions.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/woohung/morse-game/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session telemetry.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			nickname TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			words_completed INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_letter_stats (
			session_id INTEGER NOT NULL,
			letter TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (session_id, letter)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_letter_stats_letter ON session_letter_stats(letter);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session and its per-letter stats.
func (s *Store) InsertSession(ctx context.Context, summary model.SessionSummary, letters []model.LetterStat) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, nickname, difficulty, score, words_completed, errors, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.EndedAt.Format(time.RFC3339Nano),
		summary.Nickname,
		string(summary.Difficulty),
		summary.Score,
		summary.WordsCompleted,
		summary.Errors,
		summary.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(letters) > 0 {
		// Assign the outer err so the deferred rollback sees failures here.
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO session_letter_stats (session_id, letter, correct, incorrect)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ls := range letters {
			if _, err = stmt.ExecContext(ctx, id, ls.Letter, ls.Correct, ls.Incorrect); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// WeakLetters aggregates letter outcomes over the most recent sessions,
// worst accuracy first. An empty difficulty matches all sessions.
func (s *Store) WeakLetters(ctx context.Context, window int, difficulty model.Difficulty) ([]model.LetterAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR difficulty = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ls.letter, SUM(ls.correct) AS correct, SUM(ls.incorrect) AS incorrect
	FROM session_letter_stats ls
	JOIN recent_sessions r ON r.id = ls.session_id
	GROUP BY ls.letter
	ORDER BY CAST(SUM(ls.correct) AS REAL) / MAX(SUM(ls.correct) + SUM(ls.incorrect), 1) ASC, ls.letter ASC`

	rows, err := s.db.QueryContext(ctx, query, string(difficulty), string(difficulty), window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LetterAggregate
	for rows.Next() {
		var agg model.LetterAggregate
		if err := rows.Scan(&agg.Letter, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSessions returns stored sessions, oldest first, optionally filtered
// by difficulty and a lower bound on end time.
func (s *Store) ListSessions(ctx context.Context, difficulty model.Difficulty, since *time.Time) ([]model.SessionSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if difficulty != model.AnyDifficulty {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, string(difficulty))
	}
	if since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT started_at, ended_at, nickname, difficulty, score, words_completed, errors, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var summary model.SessionSummary
		var startedAt, endedAt, difficulty string
		if err := rows.Scan(&startedAt, &endedAt, &summary.Nickname, &difficulty, &summary.Score, &summary.WordsCompleted, &summary.Errors, &summary.DurationMs); err != nil {
			return nil, err
		}
		started, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		ended, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		summary.StartedAt = started
		summary.EndedAt = ended
		summary.Difficulty = model.Difficulty(difficulty)
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
