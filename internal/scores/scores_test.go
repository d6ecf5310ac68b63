package scores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/woohung/morse-game/internal/model"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "high_scores.json"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.now = func() time.Time { return time.Unix(1700000000, 0) }
	return m
}

func TestBetter_FourKeyOrdering(t *testing.T) {
	base := Record{Score: 5, WordsCompleted: 5, Errors: 3, TimeTaken: 60}
	cases := []struct {
		name string
		a, b Record
		want bool
	}{
		{"higher score wins", Record{Score: 6}, base, true},
		{"lower score loses", Record{Score: 4, WordsCompleted: 99}, base, false},
		{"more words breaks score tie", Record{Score: 5, WordsCompleted: 6, Errors: 99}, base, true},
		{"fewer errors breaks words tie", Record{Score: 5, WordsCompleted: 5, Errors: 2, TimeTaken: 999}, base, true},
		{"less time breaks errors tie", Record{Score: 5, WordsCompleted: 5, Errors: 3, TimeTaken: 59}, base, true},
		{"equal records do not rank ahead", base, base, false},
	}
	for _, tc := range cases {
		if got := Better(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: Better() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBetter_StrictTotalOrder(t *testing.T) {
	recs := []Record{
		{Score: 2, WordsCompleted: 2, Errors: 0, TimeTaken: 10},
		{Score: 2, WordsCompleted: 1, Errors: 0, TimeTaken: 10},
		{Score: 2, WordsCompleted: 2, Errors: 1, TimeTaken: 10},
		{Score: 2, WordsCompleted: 2, Errors: 0, TimeTaken: 20},
		{Score: 3, WordsCompleted: 0, Errors: 9, TimeTaken: 99},
	}
	for i, a := range recs {
		for j, b := range recs {
			if i == j {
				continue
			}
			if Better(a, b) == Better(b, a) && Better(a, b) {
				t.Errorf("Better not antisymmetric for %v vs %v", a, b)
			}
		}
	}
}

func TestAddScore_SortsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "high_scores.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	entries := []Record{
		{Nickname: "ALPHA", Score: 3, WordsCompleted: 3, Errors: 1, TimeTaken: 90, Difficulty: "easy"},
		{Nickname: "BRAVO", Score: 5, WordsCompleted: 5, Errors: 0, TimeTaken: 80, Difficulty: "easy"},
		{Nickname: "CHLOE", Score: 5, WordsCompleted: 5, Errors: 2, TimeTaken: 70, Difficulty: "easy"},
	}
	for _, rec := range entries {
		if err := m.AddScore(rec); err != nil {
			t.Fatalf("AddScore() error = %v", err)
		}
	}

	top := m.TopScores(model.Easy, 0)
	wantOrder := []string{"BRAVO", "CHLOE", "ALPHA"}
	for i, nick := range wantOrder {
		if top[i].Nickname != nick {
			t.Fatalf("board order = %v, want %v", nicknames(top), wantOrder)
		}
	}

	// Reload from disk: ordering is part of the stored contract.
	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload NewManager() error = %v", err)
	}
	top = reloaded.TopScores(model.Easy, 2)
	if len(top) != 2 || top[0].Nickname != "BRAVO" || top[1].Nickname != "CHLOE" {
		t.Errorf("reloaded top = %v", nicknames(top))
	}
}

func TestAddScore_UnknownDifficultyFallsBackToEasy(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddScore(Record{Nickname: "X", Difficulty: "brutal"}); err != nil {
		t.Fatalf("AddScore() error = %v", err)
	}
	if got := m.TopScores(model.Easy, 0); len(got) != 1 {
		t.Errorf("easy board length = %d, want 1", len(got))
	}
}

func TestIsNicknameAvailable(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddScore(Record{Nickname: "Sparks", Difficulty: "hard"}); err != nil {
		t.Fatalf("AddScore() error = %v", err)
	}

	// Global check is case-insensitive and trimmed.
	if m.IsNicknameAvailable("  sparks ", model.AnyDifficulty) {
		t.Error("global check missed existing nickname")
	}
	if m.IsNicknameAvailable("sparks", model.Hard) {
		t.Error("per-difficulty check missed existing nickname")
	}
	if !m.IsNicknameAvailable("sparks", model.Easy) {
		t.Error("nickname reported taken on a board it is not on")
	}
	if !m.IsNicknameAvailable("morse", model.AnyDifficulty) {
		t.Error("fresh nickname reported taken")
	}
}

func TestRank(t *testing.T) {
	m := newTestManager(t)
	seed := []Record{
		{Nickname: "A", Score: 10, WordsCompleted: 10, Difficulty: "easy"},
		{Nickname: "B", Score: 8, WordsCompleted: 8, Difficulty: "easy"},
		{Nickname: "C", Score: 8, WordsCompleted: 8, Errors: 4, Difficulty: "easy"},
	}
	for _, rec := range seed {
		if err := m.AddScore(rec); err != nil {
			t.Fatalf("AddScore() error = %v", err)
		}
	}

	got := m.Rank(Record{Score: 8, WordsCompleted: 8, Errors: 2, TimeTaken: 1, Difficulty: "easy"})
	if got != 2 {
		t.Errorf("Rank() = %d, want 2", got)
	}
	if got := m.Rank(Record{Score: 11, Difficulty: "easy"}); got != 1 {
		t.Errorf("Rank() for new best = %d, want 1", got)
	}
}

func TestLoad_LegacyFlatArrayMigratesToEasy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "high_scores.json")
	legacy := []Record{{Nickname: "OLDTIMER", Score: 7, Difficulty: "easy"}}
	data, err := json.Marshal(legacy)
	if err != nil {
		t.Fatalf("marshal legacy: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	top := m.TopScores(model.Easy, 0)
	if len(top) != 1 || top[0].Nickname != "OLDTIMER" {
		t.Errorf("legacy migration produced %v", nicknames(top))
	}
}

func TestPlayerBest(t *testing.T) {
	m := newTestManager(t)
	for _, rec := range []Record{
		{Nickname: "KEY", Score: 2, Difficulty: "easy"},
		{Nickname: "KEY", Score: 5, Difficulty: "easy"},
		{Nickname: "OTHER", Score: 9, Difficulty: "easy"},
	} {
		if err := m.AddScore(rec); err != nil {
			t.Fatalf("AddScore() error = %v", err)
		}
	}

	best, ok := m.PlayerBest("key", model.Easy)
	if !ok || best.Score != 5 {
		t.Errorf("PlayerBest() = %v, %v; want score 5", best, ok)
	}
	if _, ok := m.PlayerBest("nobody", model.Easy); ok {
		t.Error("PlayerBest() found a record for an unknown player")
	}
}

func TestBoardStatsAndClear(t *testing.T) {
	m := newTestManager(t)
	for _, rec := range []Record{
		{Nickname: "A", Score: 4, WordsCompleted: 4, Difficulty: "hard"},
		{Nickname: "B", Score: 6, WordsCompleted: 6, Difficulty: "hard"},
	} {
		if err := m.AddScore(rec); err != nil {
			t.Fatalf("AddScore() error = %v", err)
		}
	}

	stats := m.BoardStats(model.Hard)
	if stats.TotalGames != 2 || stats.UniquePlayers != 2 || stats.HighestScore != 6 || stats.TotalWords != 10 {
		t.Errorf("BoardStats() = %+v", stats)
	}
	if stats.AverageScore != 5 {
		t.Errorf("AverageScore = %v, want 5", stats.AverageScore)
	}

	if err := m.Clear(model.Hard); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := m.TopScores(model.Hard, 0); len(got) != 0 {
		t.Errorf("board not cleared: %v", nicknames(got))
	}
}

func nicknames(recs []Record) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Nickname
	}
	return out
}
