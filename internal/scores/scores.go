// internal/scores/scores.go
// Package scores persists the per-difficulty leaderboards as a JSON object
// keyed by difficulty. The on-disk ordering follows the ranking rule and is
// part of the observable contract; other tools may rely on it.
package scores

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/woohung/morse-game/internal/model"
)

var (
	// ErrEmptyNickname indicates a blank nickname was submitted
	ErrEmptyNickname = errors.New("nickname must not be empty")
	// ErrNicknameTaken indicates the nickname already appears on a leaderboard
	ErrNicknameTaken = errors.New("nickname already taken")
)

// Record is one finished session on a leaderboard.
type Record struct {
	Nickname       string  `json:"nickname"`
	Score          int     `json:"score"`
	WordsCompleted int     `json:"words_completed"`
	TimeTaken      float64 `json:"time_taken"`
	Errors         int     `json:"errors"`
	Difficulty     string  `json:"difficulty"`
	Date           string  `json:"date"`
	Timestamp      float64 `json:"timestamp"`
}

// Better reports whether a ranks strictly ahead of b: higher score, then more
// words completed, then fewer errors, then less elapsed time.
func Better(a, b Record) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.WordsCompleted != b.WordsCompleted {
		return a.WordsCompleted > b.WordsCompleted
	}
	if a.Errors != b.Errors {
		return a.Errors < b.Errors
	}
	return a.TimeTaken < b.TimeTaken
}

// Manager loads, mutates and saves the leaderboards.
type Manager struct {
	path string

	mu     sync.Mutex
	boards map[model.Difficulty][]Record
	now    func() time.Time
}

// NewManager opens (or creates) the score file at path.
func NewManager(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create scores dir: %w", err)
	}
	m := &Manager{
		path: path,
		boards: map[model.Difficulty][]Record{
			model.Easy: {},
			model.Hard: {},
		},
		now: time.Now,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// load reads the score file. A missing file starts empty; the legacy flat
// array format migrates into the easy bucket.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read scores: %w", err)
	}

	var keyed map[string][]Record
	if err := json.Unmarshal(data, &keyed); err == nil {
		for diff, recs := range keyed {
			m.boards[model.Difficulty(diff)] = recs
		}
		return nil
	}

	var flat []Record
	if err := json.Unmarshal(data, &flat); err == nil {
		m.boards[model.Easy] = flat
		return nil
	}

	return fmt.Errorf("parse scores %s: unrecognized format", m.path)
}

// save writes all boards, each sorted per the ranking rule.
func (m *Manager) save() error {
	keyed := make(map[string][]Record, len(m.boards))
	for diff, recs := range m.boards {
		keyed[string(diff)] = recs
	}
	data, err := json.MarshalIndent(keyed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write scores: %w", err)
	}
	return nil
}

// AddScore appends a record, re-sorts its board and saves. An unknown
// difficulty lands in the easy bucket, matching the legacy behavior.
func (m *Manager) AddScore(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	diff := model.Difficulty(rec.Difficulty)
	if !diff.Valid() {
		diff = model.Easy
		rec.Difficulty = string(model.Easy)
	}
	now := m.now()
	rec.Date = now.Format(time.RFC3339)
	rec.Timestamp = float64(now.UnixNano()) / float64(time.Second)

	board := append(m.boards[diff], rec)
	sort.SliceStable(board, func(i, j int) bool { return Better(board[i], board[j]) })
	m.boards[diff] = board

	return m.save()
}

// TopScores returns up to limit records for the difficulty, best first.
// A non-positive limit returns the whole board.
func (m *Manager) TopScores(diff model.Difficulty, limit int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	board := m.boards[normalize(diff)]
	if limit <= 0 || limit > len(board) {
		limit = len(board)
	}
	out := make([]Record, limit)
	copy(out, board[:limit])
	return out
}

// IsNicknameAvailable reports whether the nickname (case-insensitive,
// trimmed) is free. With AnyDifficulty every board is checked, making
// nicknames globally unique.
func (m *Manager) IsNicknameAvailable(nickname string, diff model.Difficulty) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := strings.ToLower(strings.TrimSpace(nickname))
	boards := m.boards
	if diff != model.AnyDifficulty {
		boards = map[model.Difficulty][]Record{normalize(diff): m.boards[normalize(diff)]}
	}
	for _, recs := range boards {
		for _, rec := range recs {
			if strings.ToLower(strings.TrimSpace(rec.Nickname)) == want {
				return false
			}
		}
	}
	return true
}

// Rank returns the 1-based leaderboard position the record would take.
func (m *Manager) Rank(rec Record) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	better := 0
	for _, existing := range m.boards[normalize(model.Difficulty(rec.Difficulty))] {
		if Better(existing, rec) {
			better++
		}
	}
	return better + 1
}

// PlayerBest returns the best record for a nickname, or false if none.
func (m *Manager) PlayerBest(nickname string, diff model.Difficulty) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := strings.ToLower(nickname)
	var best Record
	found := false
	for _, rec := range m.boards[normalize(diff)] {
		if strings.ToLower(rec.Nickname) != want {
			continue
		}
		if !found || Better(rec, best) {
			best = rec
			found = true
		}
	}
	return best, found
}

// Stats summarizes a board.
type Stats struct {
	TotalGames    int
	UniquePlayers int
	HighestScore  int
	AverageScore  float64
	TotalWords    int
}

// BoardStats aggregates over one difficulty.
func (m *Manager) BoardStats(diff model.Difficulty) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	board := m.boards[normalize(diff)]
	s := Stats{TotalGames: len(board)}
	if len(board) == 0 {
		return s
	}
	players := make(map[string]struct{})
	sum := 0
	for _, rec := range board {
		players[strings.ToLower(rec.Nickname)] = struct{}{}
		sum += rec.Score
		s.TotalWords += rec.WordsCompleted
		if rec.Score > s.HighestScore {
			s.HighestScore = rec.Score
		}
	}
	s.UniquePlayers = len(players)
	s.AverageScore = float64(sum) / float64(len(board))
	return s
}

// Clear wipes one board, or all of them with AnyDifficulty.
func (m *Manager) Clear(diff model.Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if diff == model.AnyDifficulty {
		m.boards = map[model.Difficulty][]Record{model.Easy: {}, model.Hard: {}}
	} else {
		m.boards[normalize(diff)] = []Record{}
	}
	return m.save()
}

func normalize(diff model.Difficulty) model.Difficulty {
	if !diff.Valid() {
		return model.Easy
	}
	return diff
}
