package game

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/woohung/morse-game/internal/model"
	"github.com/woohung/morse-game/internal/scores"
)

type fakeWords struct {
	words []string
	i     int
}

func (f *fakeWords) SetDifficulty(model.Difficulty) {}

func (f *fakeWords) Next() string {
	w := f.words[f.i%len(f.words)]
	f.i++
	return w
}

func (f *fakeWords) Count() int { return len(f.words) }

type fakeStore struct {
	records     []scores.Record
	rankQueries []scores.Record
	taken       map[string]bool
	addErr      error
}

func (f *fakeStore) AddScore(rec scores.Record) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) IsNicknameAvailable(nickname string, _ model.Difficulty) bool {
	return !f.taken[nickname]
}

func (f *fakeStore) Rank(rec scores.Record) int {
	f.rankQueries = append(f.rankQueries, rec)
	return 1
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func validGameConfig() Config {
	return Config{
		Easy: DifficultyConfig{
			WordBaseTime:       15 * time.Second,
			PerLetterTime:      2500 * time.Millisecond,
			OLetterBonus:       1500 * time.Millisecond,
			SessionDuration:    120 * time.Second,
			OneShotBonusAt:     2,
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

func newTestMachine(t *testing.T, words []string, diff model.Difficulty) (*Machine, *fakeStore, *fakeClock) {
	t.Helper()
	store := &fakeStore{taken: map[string]bool{}}
	m, err := New(validGameConfig(), &fakeWords{words: words}, store, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clk.now
	if err := m.SelectDifficulty(diff); err != nil {
		t.Fatalf("SelectDifficulty() error = %v", err)
	}
	if err := m.ConfirmNickname("OPERATOR"); err != nil {
		t.Fatalf("ConfirmNickname() error = %v", err)
	}
	return m, store, clk
}

func typeWord(m *Machine, word string) {
	for _, ch := range word {
		m.OnCharacter(ch)
	}
}

func TestDifficultyConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*DifficultyConfig)
		want   error
	}{
		{"valid", func(*DifficultyConfig) {}, nil},
		{"zero base time", func(c *DifficultyConfig) { c.WordBaseTime = 0 }, ErrInvalidWordBaseTime},
		{"zero per-letter", func(c *DifficultyConfig) { c.PerLetterTime = 0 }, ErrInvalidPerLetterTime},
		{"negative o bonus", func(c *DifficultyConfig) { c.OLetterBonus = -time.Second }, ErrNegativeOBonus},
		{"zero session", func(c *DifficultyConfig) { c.SessionDuration = 0 }, ErrInvalidSessionDuration},
		{"negative bonus", func(c *DifficultyConfig) { c.RepeatBonusAmount = -time.Second }, ErrNegativeBonus},
	}
	for _, tc := range cases {
		cfg := validGameConfig().Easy
		tc.mutate(&cfg)
		err := cfg.Validate()
		if tc.want == nil {
			if err != nil {
				t.Errorf("%s: Validate() = %v, want nil", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: Validate() = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestDifficultyConfig_WordTimeLimitMonotone(t *testing.T) {
	cfg := validGameConfig().Hard
	words := []string{"A", "AT", "CAT", "MAST", "STORM", "SIGNAL"}
	prev := time.Duration(0)
	for _, w := range words {
		limit := cfg.WordTimeLimit(w)
		if limit < prev {
			t.Fatalf("WordTimeLimit(%q) = %v, shorter than %v for a shorter word", w, limit, prev)
		}
		prev = limit
	}
}

func TestDifficultyConfig_WordTimeLimitOBonus(t *testing.T) {
	cfg := validGameConfig().Hard
	plain := cfg.WordTimeLimit("KIT")
	withO := cfg.WordTimeLimit("OIL")
	if withO != plain+cfg.OLetterBonus {
		t.Errorf("O word limit = %v, want %v", withO, plain+cfg.OLetterBonus)
	}
}

func TestMachine_CompleteWordAdvancesSession(t *testing.T) {
	m, _, _ := newTestMachine(t, []string{"SOS", "KEY"}, model.Easy)

	typeWord(m, "SOS")

	snap := m.Snapshot()
	if snap.WordsCompleted != 1 {
		t.Errorf("WordsCompleted = %d, want 1", snap.WordsCompleted)
	}
	if snap.Streak != 1 {
		t.Errorf("Streak = %d, want 1", snap.Streak)
	}
	if snap.Word != "KEY" || snap.CurrentIndex != 0 {
		t.Errorf("next word = %q at index %d, want KEY at 0", snap.Word, snap.CurrentIndex)
	}
}

func TestMachine_WrongLetterDoesNotAdvance(t *testing.T) {
	m, _, _ := newTestMachine(t, []string{"CAT"}, model.Easy)

	m.OnCharacter('K')

	snap := m.Snapshot()
	if snap.Statuses[0] != LetterWrong {
		t.Errorf("Statuses[0] = %v, want LetterWrong", snap.Statuses[0])
	}
	if snap.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", snap.CurrentIndex)
	}
	if snap.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", snap.TotalErrors)
	}
	if m.word.LetterErrors[0] != 1 {
		t.Errorf("LetterErrors[0] = %d, want 1", m.word.LetterErrors[0])
	}

	// Retransmitting the correct letter recovers.
	m.OnCharacter('C')
	snap = m.Snapshot()
	if snap.Statuses[0] != LetterCorrect || snap.CurrentIndex != 1 {
		t.Errorf("after retry: Statuses[0] = %v, CurrentIndex = %d", snap.Statuses[0], snap.CurrentIndex)
	}
}

func TestMachine_HardBonusRepeatsEveryThird(t *testing.T) {
	m, _, _ := newTestMachine(t, []string{"KEY"}, model.Hard)
	base := m.Snapshot().TimeRemaining

	for i := 0; i < 6; i++ {
		typeWord(m, "KEY")
	}

	snap := m.Snapshot()
	want := base + 2*validGameConfig().Hard.RepeatBonusAmount
	if snap.TimeRemaining != want {
		t.Errorf("TimeRemaining = %v, want %v (two bonuses at streaks 3 and 6)", snap.TimeRemaining, want)
	}
}

func TestMachine_EasyBonusFiresOnce(t *testing.T) {
	m, _, _ := newTestMachine(t, []string{"KEY"}, model.Easy)
	base := m.Snapshot().TimeRemaining

	for i := 0; i < 5; i++ {
		typeWord(m, "KEY")
	}

	snap := m.Snapshot()
	want := base + validGameConfig().Easy.OneShotBonusAmount
	if snap.TimeRemaining != want {
		t.Errorf("TimeRemaining = %v, want %v (single bonus at streak 2)", snap.TimeRemaining, want)
	}
}

func TestMachine_WordExpiryResetsStreakWithoutCounting(t *testing.T) {
	m, _, clk := newTestMachine(t, []string{"KEY", "SOS"}, model.Easy)

	typeWord(m, "KEY") // streak 1
	limit := m.word.TimeLimit
	clk.advance(limit)
	m.Tick()

	snap := m.Snapshot()
	if snap.Streak != 0 {
		t.Errorf("Streak = %d, want 0 after expiry", snap.Streak)
	}
	if snap.WordsCompleted != 1 {
		t.Errorf("WordsCompleted = %d, want 1 (expired word not counted)", snap.WordsCompleted)
	}
	if snap.Word != "KEY" {
		t.Errorf("word after expiry = %q, want the next one from the source", snap.Word)
	}
	if snap.Mode != ModePlaying {
		t.Errorf("Mode = %v, want still playing", snap.Mode)
	}
}

func TestMachine_SessionExpiryEndsGame(t *testing.T) {
	m, store, clk := newTestMachine(t, []string{"KEY"}, model.Easy)

	typeWord(m, "KEY")
	typeWord(m, "KEY")
	clk.advance(validGameConfig().Easy.SessionDuration + 20*time.Second)
	m.Tick()

	if m.Mode() != ModeGameOver {
		t.Fatalf("Mode = %v, want ModeGameOver", m.Mode())
	}
	if len(store.records) != 1 {
		t.Fatalf("store received %d records, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.Nickname != "OPERATOR" || rec.Score != 2 || rec.WordsCompleted != 2 || rec.Difficulty != "easy" {
		t.Errorf("persisted record = %+v", rec)
	}

	summary := m.Summary()
	if summary == nil {
		t.Fatal("Summary() = nil after game over")
	}
	if summary.Score != 2 || summary.Difficulty != model.Easy {
		t.Errorf("summary = %+v", summary)
	}
	stats := m.LetterStats()
	if len(stats) == 0 {
		t.Error("LetterStats() empty after a played session")
	}
}

func TestMachine_RankQueriesPersistedRecord(t *testing.T) {
	m, store, clk := newTestMachine(t, []string{"SOS", "KEY"}, model.Easy)

	typeWord(m, "SOS")
	clk.advance(validGameConfig().Easy.SessionDuration + 5*time.Second)
	m.Tick()

	if m.Rank() != 1 {
		t.Fatalf("Rank() = %d, want 1", m.Rank())
	}
	if len(store.rankQueries) == 0 {
		t.Fatal("Rank() never reached the store")
	}
	if len(store.records) != 1 {
		t.Fatalf("store received %d records, want 1", len(store.records))
	}
	// Wall-clock elapsed time exceeds the clamped session time, so ranking
	// against anything but the written record would misplace the player.
	if got, want := store.rankQueries[0], store.records[0]; got != want {
		t.Errorf("Rank() queried %+v, want the persisted record %+v", got, want)
	}
}

func TestMachine_RankAfterSoloGameIsFirst(t *testing.T) {
	mgr, err := scores.NewManager(filepath.Join(t.TempDir(), "high_scores.json"))
	if err != nil {
		t.Fatalf("scores.NewManager() error = %v", err)
	}
	m, err := New(validGameConfig(), &fakeWords{words: []string{"SOS", "KEY"}}, mgr, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clk.now
	if err := m.SelectDifficulty(model.Easy); err != nil {
		t.Fatalf("SelectDifficulty() error = %v", err)
	}
	if err := m.ConfirmNickname("OPERATOR"); err != nil {
		t.Fatalf("ConfirmNickname() error = %v", err)
	}

	typeWord(m, "SOS")
	clk.advance(validGameConfig().Easy.SessionDuration + 5*time.Second)
	m.Tick()

	if m.Mode() != ModeGameOver {
		t.Fatalf("Mode = %v, want ModeGameOver", m.Mode())
	}
	// The only record on the board is the player's own.
	if got := m.Rank(); got != 1 {
		t.Errorf("Rank() = %d, want 1", got)
	}
}

func TestMachine_BonusSurvivesWordTransition(t *testing.T) {
	m, _, clk := newTestMachine(t, []string{"KEY"}, model.Hard)
	base := m.Snapshot().TimeRemaining

	for i := 0; i < 3; i++ {
		typeWord(m, "KEY")
	}
	// Let the current word expire; the bonus seconds must remain.
	limit := m.word.TimeLimit
	clk.advance(limit)
	m.Tick()

	want := base + validGameConfig().Hard.RepeatBonusAmount - limit
	if got := m.Snapshot().TimeRemaining; got != want {
		t.Errorf("TimeRemaining = %v, want %v", got, want)
	}
}

func TestMachine_ConfirmNicknameValidation(t *testing.T) {
	store := &fakeStore{taken: map[string]bool{"SPARKS": true}}
	m, err := New(validGameConfig(), &fakeWords{words: []string{"KEY"}}, store, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.SelectDifficulty(model.Easy); err != nil {
		t.Fatalf("SelectDifficulty() error = %v", err)
	}

	if err := m.ConfirmNickname("   "); !errors.Is(err, scores.ErrEmptyNickname) {
		t.Errorf("blank nickname error = %v, want ErrEmptyNickname", err)
	}
	if err := m.ConfirmNickname("SPARKS"); !errors.Is(err, scores.ErrNicknameTaken) {
		t.Errorf("taken nickname error = %v, want ErrNicknameTaken", err)
	}
	if m.Mode() != ModeNicknameInput {
		t.Errorf("Mode = %v, want still nickname input after failures", m.Mode())
	}

	if err := m.ConfirmNickname("  FRESH  "); err != nil {
		t.Fatalf("ConfirmNickname() error = %v", err)
	}
	if m.Mode() != ModePlaying {
		t.Errorf("Mode = %v, want playing", m.Mode())
	}
	if m.Snapshot().Nickname != "FRESH" {
		t.Errorf("Nickname = %q, want trimmed FRESH", m.Snapshot().Nickname)
	}
}

func TestMachine_SelectDifficultyRejectsUnknown(t *testing.T) {
	m, err := New(validGameConfig(), &fakeWords{words: []string{"KEY"}}, &fakeStore{taken: map[string]bool{}}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.SelectDifficulty(model.Difficulty("brutal")); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("SelectDifficulty() error = %v, want ErrInvalidDifficulty", err)
	}
}

func TestMachine_PracticeFlow(t *testing.T) {
	m, _, clk := newTestMachine(t, []string{"KEY"}, model.Easy)
	m.GoToMainMenu()
	m.StartPractice()
	if m.Mode() != ModePractice {
		t.Fatalf("Mode = %v, want practice", m.Mode())
	}

	target := m.Snapshot().PracticeLetter
	wrong := 'A'
	if target == 'A' {
		wrong = 'B'
	}

	m.OnCharacter(wrong)
	snap := m.Snapshot()
	if snap.PracticeStatus != LetterWrong || snap.PracticeErrors != 1 {
		t.Errorf("after wrong letter: status = %v, errors = %d", snap.PracticeStatus, snap.PracticeErrors)
	}

	m.OnCharacter(target)
	snap = m.Snapshot()
	if snap.PracticeStatus != LetterCorrect || snap.PracticeCompleted != 1 {
		t.Errorf("after correct letter: status = %v, completed = %d", snap.PracticeStatus, snap.PracticeCompleted)
	}

	// Input during the confirmation delay is ignored.
	m.OnCharacter(wrong)
	if got := m.Snapshot().PracticeErrors; got != 1 {
		t.Errorf("PracticeErrors = %d, want 1 (input ignored during delay)", got)
	}

	// The next letter appears only after the delay.
	clk.advance(practiceNextLetterDelay / 2)
	m.Tick()
	if m.Snapshot().PracticeStatus != LetterCorrect {
		t.Error("letter swapped before the delay elapsed")
	}
	clk.advance(practiceNextLetterDelay)
	m.Tick()
	if got := m.Snapshot().PracticeStatus; got != LetterPending {
		t.Errorf("PracticeStatus = %v, want pending after delay", got)
	}
}

func TestMachine_CharactersIgnoredOutsidePlayModes(t *testing.T) {
	m, _, _ := newTestMachine(t, []string{"KEY"}, model.Easy)
	m.GoToMainMenu()

	m.OnCharacter('K')
	snap := m.Snapshot()
	if snap.CurrentIndex != 0 || snap.TotalErrors != 0 {
		t.Errorf("menu input mutated session: %+v", snap)
	}
}

func TestNew_Validation(t *testing.T) {
	words := &fakeWords{words: []string{"KEY"}}
	store := &fakeStore{taken: map[string]bool{}}

	if _, err := New(validGameConfig(), nil, store, nil); !errors.Is(err, ErrNilWordSource) {
		t.Errorf("nil words error = %v, want ErrNilWordSource", err)
	}
	if _, err := New(validGameConfig(), words, nil, nil); !errors.Is(err, ErrNilScoreStore) {
		t.Errorf("nil store error = %v, want ErrNilScoreStore", err)
	}
	bad := validGameConfig()
	bad.Hard.SessionDuration = 0
	if _, err := New(bad, words, store, nil); !errors.Is(err, ErrInvalidSessionDuration) {
		t.Errorf("bad config error = %v, want ErrInvalidSessionDuration", err)
	}
}
