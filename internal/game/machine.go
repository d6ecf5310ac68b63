// Package game implements the session state machine: word lifecycle,
// letter matching, streak bonuses, the session clock and practice mode.
// All operations are synchronous and safe to call once per tick from a
// single goroutine; nothing here sleeps or blocks.
package game

import (
	"errors"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/woohung/morse-game/internal/model"
	"github.com/woohung/morse-game/internal/scores"
)

var (
	// ErrNilWordSource indicates a missing word provider
	ErrNilWordSource = errors.New("word source must not be nil")
	// ErrNilScoreStore indicates a missing score store
	ErrNilScoreStore = errors.New("score store must not be nil")
	// ErrInvalidDifficulty indicates an unknown difficulty selection
	ErrInvalidDifficulty = errors.New("difficulty must be easy or hard")
	// ErrNoNickname indicates a game start without a registered nickname
	ErrNoNickname = errors.New("nickname must be registered before playing")
)

// Mode is the current screen of the session state machine.
type Mode int

const (
	ModeMainMenu Mode = iota
	ModeNumberedMenu
	ModeDifficultySelect
	ModeNicknameInput
	ModePlaying
	ModePractice
	ModeGameOver
	ModeHighScores
)

func (m Mode) String() string {
	switch m {
	case ModeMainMenu:
		return "main-menu"
	case ModeNumberedMenu:
		return "numbered-menu"
	case ModeDifficultySelect:
		return "difficulty-select"
	case ModeNicknameInput:
		return "nickname-input"
	case ModePlaying:
		return "playing"
	case ModePractice:
		return "practice"
	case ModeGameOver:
		return "game-over"
	case ModeHighScores:
		return "high-scores"
	}
	return "unknown"
}

// LetterStatus is the match state of one letter of the current word.
type LetterStatus int

const (
	LetterPending LetterStatus = iota
	LetterCorrect
	LetterWrong
)

// The operator sees the green letter before the practice target changes.
const practiceNextLetterDelay = 750 * time.Millisecond

// WordSource provides difficulty-filtered vocabulary.
type WordSource interface {
	SetDifficulty(d model.Difficulty)
	Next() string
	Count() int
}

// ScoreStore persists finished sessions and answers nickname queries.
type ScoreStore interface {
	AddScore(rec scores.Record) error
	IsNicknameAvailable(nickname string, diff model.Difficulty) bool
	Rank(rec scores.Record) int
}

// WordState tracks the letter-by-letter progress through the current word.
type WordState struct {
	Word         string
	Statuses     []LetterStatus
	CurrentIndex int
	LetterErrors map[int]int
	StartedAt    time.Time
	TimeLimit    time.Duration
}

// Snapshot is a read-only view of the machine for rendering. The renderer
// must never feed it back in.
type Snapshot struct {
	Mode       Mode
	Difficulty model.Difficulty
	Nickname   string

	Word          string
	Statuses      []LetterStatus
	CurrentIndex  int
	WordRemaining time.Duration
	WordTimeLimit time.Duration

	WordsCompleted  int
	TotalErrors     int
	Score           int
	Streak          int
	TimeRemaining   time.Duration
	SessionDuration time.Duration

	LastBonus   time.Duration
	LastBonusAt time.Time

	PracticeLetter    rune
	PracticeStatus    LetterStatus
	PracticeCompleted int
	PracticeErrors    int
}

// Machine is the game session state machine.
type Machine struct {
	config Config
	words  WordSource
	store  ScoreStore
	rng    *rand.Rand
	now    func() time.Time

	mode       Mode
	difficulty model.Difficulty
	nickname   string

	word           WordState
	wordsCompleted int
	totalErrors    int
	score          int
	streak         int
	timeRemaining  time.Duration
	startedAt      time.Time
	lastTick       time.Time

	lastBonus   time.Duration
	lastBonusAt time.Time

	letterStats map[rune]*letterCount

	practiceLetter    rune
	practiceStatus    LetterStatus
	practiceCompleted int
	practiceErrors    int
	practiceNextAt    time.Time

	summary    *model.SessionSummary
	lastRecord scores.Record
}

type letterCount struct {
	correct   int
	incorrect int
}

// New builds a machine resting at the main menu. A nil rng falls back to a
// time-seeded source.
func New(config Config, words WordSource, store ScoreStore, rng *rand.Rand) (*Machine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if words == nil {
		return nil, ErrNilWordSource
	}
	if store == nil {
		return nil, ErrNilScoreStore
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Machine{
		config: config,
		words:  words,
		store:  store,
		rng:    rng,
		now:    time.Now,
		mode:   ModeMainMenu,
	}, nil
}

// Mode returns the current screen.
func (m *Machine) Mode() Mode { return m.mode }

// Difficulty returns the selected difficulty.
func (m *Machine) Difficulty() model.Difficulty { return m.difficulty }

// GoToMainMenu discards any finished-session state and returns to the menu.
func (m *Machine) GoToMainMenu() {
	m.mode = ModeMainMenu
	m.summary = nil
}

// GoToNumberedMenu shows the keyed-selection menu.
func (m *Machine) GoToNumberedMenu() { m.mode = ModeNumberedMenu }

// GoToDifficultySelect shows the difficulty screen.
func (m *Machine) GoToDifficultySelect() { m.mode = ModeDifficultySelect }

// GoToHighScores shows the leaderboard.
func (m *Machine) GoToHighScores() { m.mode = ModeHighScores }

// SelectDifficulty records the difficulty and moves to nickname entry.
func (m *Machine) SelectDifficulty(d model.Difficulty) error {
	if !d.Valid() {
		return ErrInvalidDifficulty
	}
	m.difficulty = d
	m.words.SetDifficulty(d)
	m.mode = ModeNicknameInput
	return nil
}

// ConfirmNickname validates the nickname against both leaderboards and, on
// success, starts the game. Validation failures leave the machine in
// nickname entry so the operator can retype.
func (m *Machine) ConfirmNickname(nickname string) error {
	trimmed := trimNickname(nickname)
	if trimmed == "" {
		return scores.ErrEmptyNickname
	}
	if !m.store.IsNicknameAvailable(trimmed, model.AnyDifficulty) {
		return scores.ErrNicknameTaken
	}
	m.nickname = trimmed
	return m.StartGame()
}

// StartGame resets the session counters and deals the first word.
func (m *Machine) StartGame() error {
	if !m.difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if m.nickname == "" {
		return ErrNoNickname
	}
	cfg := m.config.ForDifficulty(m.difficulty)
	now := m.now()

	m.wordsCompleted = 0
	m.totalErrors = 0
	m.score = 0
	m.streak = 0
	m.timeRemaining = cfg.SessionDuration
	m.startedAt = now
	m.lastTick = now
	m.lastBonus = 0
	m.lastBonusAt = time.Time{}
	m.letterStats = make(map[rune]*letterCount)
	m.summary = nil
	m.lastRecord = scores.Record{}

	m.mode = ModePlaying
	m.nextWord(now)
	return nil
}

// StartPractice enters single-letter training: no timers, no score.
func (m *Machine) StartPractice() {
	m.practiceCompleted = 0
	m.practiceErrors = 0
	m.practiceNextAt = time.Time{}
	m.newPracticeLetter()
	m.mode = ModePractice
}

// OnCharacter feeds one decoded character into the active mode. Characters
// arriving in any other mode are discarded.
func (m *Machine) OnCharacter(ch rune) {
	switch m.mode {
	case ModePlaying:
		m.matchLetter(ch)
	case ModePractice:
		m.matchPracticeLetter(ch)
	}
}

// Tick advances the timers: word expiry, session countdown and the deferred
// practice letter swap. Call once per loop iteration.
func (m *Machine) Tick() {
	now := m.now()
	switch m.mode {
	case ModePlaying:
		delta := now.Sub(m.lastTick)
		m.lastTick = now

		if now.Sub(m.word.StartedAt) >= m.word.TimeLimit {
			// Word abandoned: not counted, streak resets.
			m.streak = 0
			m.nextWord(now)
		}

		m.timeRemaining -= delta
		if m.timeRemaining <= 0 {
			m.timeRemaining = 0
			m.endGame(now)
		}
	case ModePractice:
		if !m.practiceNextAt.IsZero() && !now.Before(m.practiceNextAt) {
			m.newPracticeLetter()
		}
	}
}

func (m *Machine) matchLetter(ch rune) {
	if m.word.CurrentIndex >= len(m.word.Word) {
		return
	}
	want := rune(m.word.Word[m.word.CurrentIndex])
	if ch == want {
		m.word.Statuses[m.word.CurrentIndex] = LetterCorrect
		m.word.CurrentIndex++
		m.recordLetter(want, true)
		if m.word.CurrentIndex == len(m.word.Word) {
			m.wordCompleted()
		}
		return
	}
	// Wrong letter: mark, count, do not advance. The operator retransmits.
	m.word.Statuses[m.word.CurrentIndex] = LetterWrong
	m.word.LetterErrors[m.word.CurrentIndex]++
	m.totalErrors++
	m.recordLetter(want, false)
}

func (m *Machine) wordCompleted() {
	m.wordsCompleted++
	m.streak++

	cfg := m.config.ForDifficulty(m.difficulty)
	switch m.difficulty {
	case model.Hard:
		if cfg.RepeatBonusEvery > 0 && m.streak > 0 && m.streak%cfg.RepeatBonusEvery == 0 {
			m.awardBonus(cfg.RepeatBonusAmount)
		}
	case model.Easy:
		if cfg.OneShotBonusAt > 0 && m.streak == cfg.OneShotBonusAt {
			m.awardBonus(cfg.OneShotBonusAmount)
		}
	}

	m.nextWord(m.now())
}

func (m *Machine) awardBonus(amount time.Duration) {
	if amount <= 0 {
		return
	}
	m.timeRemaining += amount
	m.lastBonus = amount
	m.lastBonusAt = m.now()
}

func (m *Machine) nextWord(now time.Time) {
	cfg := m.config.ForDifficulty(m.difficulty)
	word := m.words.Next()
	m.word = WordState{
		Word:         word,
		Statuses:     make([]LetterStatus, len(word)),
		LetterErrors: make(map[int]int),
		StartedAt:    now,
		TimeLimit:    cfg.WordTimeLimit(word),
	}
}

func (m *Machine) endGame(now time.Time) {
	cfg := m.config.ForDifficulty(m.difficulty)
	m.score = m.wordsCompleted
	timeTaken := (cfg.SessionDuration - m.timeRemaining).Seconds()

	rec := scores.Record{
		Nickname:       m.nickname,
		Score:          m.score,
		WordsCompleted: m.wordsCompleted,
		TimeTaken:      timeTaken,
		Errors:         m.totalErrors,
		Difficulty:     string(m.difficulty),
	}
	if err := m.store.AddScore(rec); err != nil {
		// The session still ends; the record is only lost from the board.
		log.Printf("game: save score: %v", err)
	}
	m.lastRecord = rec

	m.summary = &model.SessionSummary{
		Nickname:       m.nickname,
		Difficulty:     m.difficulty,
		Score:          m.score,
		WordsCompleted: m.wordsCompleted,
		Errors:         m.totalErrors,
		DurationMs:     now.Sub(m.startedAt).Milliseconds(),
		StartedAt:      m.startedAt,
		EndedAt:        now,
	}
	m.mode = ModeGameOver
}

func (m *Machine) matchPracticeLetter(ch rune) {
	// Ignore input while the next letter is pending; the operator is
	// looking at the green confirmation.
	if !m.practiceNextAt.IsZero() {
		return
	}
	if ch == m.practiceLetter {
		m.practiceStatus = LetterCorrect
		m.practiceCompleted++
		m.practiceNextAt = m.now().Add(practiceNextLetterDelay)
		return
	}
	m.practiceStatus = LetterWrong
	m.practiceErrors++
}

func (m *Machine) newPracticeLetter() {
	m.practiceLetter = rune('A' + m.rng.Intn(26))
	m.practiceStatus = LetterPending
	m.practiceNextAt = time.Time{}
}

func (m *Machine) recordLetter(letter rune, correct bool) {
	if m.letterStats == nil {
		m.letterStats = make(map[rune]*letterCount)
	}
	lc, ok := m.letterStats[letter]
	if !ok {
		lc = &letterCount{}
		m.letterStats[letter] = lc
	}
	if correct {
		lc.correct++
	} else {
		lc.incorrect++
	}
}

// Summary returns the finished-session record, or nil before game over.
func (m *Machine) Summary() *model.SessionSummary {
	if m.summary == nil {
		return nil
	}
	s := *m.summary
	return &s
}

// LetterStats returns the per-letter outcomes of the last session, sorted
// by letter.
func (m *Machine) LetterStats() []model.LetterStat {
	out := make([]model.LetterStat, 0, len(m.letterStats))
	for letter, lc := range m.letterStats {
		out = append(out, model.LetterStat{
			Letter:    string(letter),
			Correct:   lc.correct,
			Incorrect: lc.incorrect,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}

// Rank returns the 1-based leaderboard position of the finished session,
// judged on the same record that was written to the board.
func (m *Machine) Rank() int {
	if m.summary == nil {
		return 0
	}
	return m.store.Rank(m.lastRecord)
}

// Snapshot copies the renderable state.
func (m *Machine) Snapshot() Snapshot {
	statuses := make([]LetterStatus, len(m.word.Statuses))
	copy(statuses, m.word.Statuses)

	var wordRemaining time.Duration
	if m.mode == ModePlaying {
		wordRemaining = m.word.TimeLimit - m.now().Sub(m.word.StartedAt)
		if wordRemaining < 0 {
			wordRemaining = 0
		}
	}

	return Snapshot{
		Mode:          m.mode,
		Difficulty:    m.difficulty,
		Nickname:      m.nickname,
		Word:          m.word.Word,
		Statuses:      statuses,
		CurrentIndex:  m.word.CurrentIndex,
		WordRemaining: wordRemaining,
		WordTimeLimit: m.word.TimeLimit,

		WordsCompleted:  m.wordsCompleted,
		TotalErrors:     m.totalErrors,
		Score:           m.score,
		Streak:          m.streak,
		TimeRemaining:   m.timeRemaining,
		SessionDuration: m.config.ForDifficulty(m.difficulty).SessionDuration,

		LastBonus:   m.lastBonus,
		LastBonusAt: m.lastBonusAt,

		PracticeLetter:    m.practiceLetter,
		PracticeStatus:    m.practiceStatus,
		PracticeCompleted: m.practiceCompleted,
		PracticeErrors:    m.practiceErrors,
	}
}

func trimNickname(nickname string) string {
	return strings.TrimSpace(nickname)
}
