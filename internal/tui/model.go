// Package tui provides the Bubble Tea front end: menus, the playing view
// with the simulated needle gauge, practice mode and the leaderboard.
//
// Terminals report key presses but not releases, so the space bar keys the
// telegraph in toggle mode: the first tap closes the key, the next opens
// it, and the interval between them is the press duration fed to the
// accumulator.
package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/woohung/morse-game/internal/game"
	"github.com/woohung/morse-game/internal/keyer"
	"github.com/woohung/morse-game/internal/model"
	"github.com/woohung/morse-game/internal/needle"
	"github.com/woohung/morse-game/internal/scores"
	"github.com/woohung/morse-game/internal/stats"
)

// How long the bonus flash stays on screen after it is awarded.
const bonusFlashDuration = 2 * time.Second

var menuItems = []string{
	"Start Game",
	"Practice",
	"High Scores",
	"Quit",
}

type tickMsg time.Time

// Options wires the model to the game components.
type Options struct {
	Machine *game.Machine
	Keyer   *keyer.Accumulator
	Needle  *needle.Controller
	Scores  *scores.Manager
	Stats   *stats.Store // optional, nil disables telemetry
	Tick    time.Duration
	Debug   bool
}

// Model implements the Bubble Tea game UI.
type Model struct {
	machine *game.Machine
	keyer   *keyer.Accumulator
	needle  *needle.Controller
	scores  *scores.Manager
	stats   *stats.Store
	tick    time.Duration
	debug   bool

	width  int
	height int

	menuIndex int
	boardDiff model.Difficulty

	nickInput textinput.Model
	nickErr   string

	gauge    progress.Model
	wordBar  progress.Model
	clockBar progress.Model

	keyDown   bool
	keyDownAt time.Time

	sessionSaved bool
	rank         int
	quitting     bool
}

// NewModel builds the UI and registers the decode callback.
func NewModel(opts Options) *Model {
	ni := textinput.New()
	ni.Placeholder = "nickname"
	ni.CharLimit = 16
	ni.Width = 24

	m := &Model{
		machine:   opts.Machine,
		keyer:     opts.Keyer,
		needle:    opts.Needle,
		scores:    opts.Scores,
		stats:     opts.Stats,
		tick:      opts.Tick,
		debug:     opts.Debug,
		boardDiff: model.Easy,
		nickInput: ni,
		gauge:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		wordBar:   progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage()),
		clockBar:  progress.New(progress.WithSolidFill("#4ECDC4"), progress.WithoutPercentage()),
	}
	if m.tick <= 0 {
		m.tick = 50 * time.Millisecond
	}
	m.keyer.SetCallback(m.onDecoded)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width / 2
		if barWidth < 10 {
			barWidth = 10
		}
		m.gauge.Width = barWidth
		m.wordBar.Width = barWidth
		m.clockBar.Width = barWidth
		return m, nil
	case tickMsg:
		m.keyer.CheckTimeout(time.Time(msg))
		wasPlaying := m.machine.Mode() == game.ModePlaying
		m.machine.Tick()
		if wasPlaying && m.machine.Mode() == game.ModeGameOver {
			m.finishSession()
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, m.tickCmd()
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return nil
	}

	switch m.machine.Mode() {
	case game.ModeMainMenu:
		return m.handleMainMenuKey(msg)
	case game.ModeNumberedMenu:
		return m.handleNumberedMenuKey(msg)
	case game.ModeDifficultySelect:
		return m.handleDifficultyKey(msg)
	case game.ModeNicknameInput:
		return m.handleNicknameKey(msg)
	case game.ModePlaying, game.ModePractice:
		return m.handlePlayKey(msg)
	case game.ModeGameOver:
		return m.handleGameOverKey(msg)
	case game.ModeHighScores:
		return m.handleHighScoresKey(msg)
	}
	return nil
}

func (m *Model) handleMainMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.selectMenuItem(m.menuIndex)
	case "1", "2", "3", "4":
		m.selectMenuItem(int(msg.String()[0] - '1'))
	case "tab":
		// The keyed menu: select entries by transmitting their digit.
		m.machine.GoToNumberedMenu()
	case "q", "esc":
		m.quitting = true
	}
	return nil
}

func (m *Model) handleNumberedMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case " ":
		m.toggleKey()
	case "c":
		m.keyer.Clear()
	case "1", "2", "3", "4":
		m.selectMenuItem(int(msg.String()[0] - '1'))
	case "tab", "esc":
		m.resetKeying()
		m.machine.GoToMainMenu()
	}
	return nil
}

func (m *Model) handleDifficultyKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "1", "e":
		m.chooseDifficulty(model.Easy)
	case "2", "h":
		m.chooseDifficulty(model.Hard)
	case "esc":
		m.machine.GoToMainMenu()
	}
	return nil
}

func (m *Model) chooseDifficulty(d model.Difficulty) {
	if err := m.machine.SelectDifficulty(d); err != nil {
		log.Printf("tui: select difficulty: %v", err)
		return
	}
	m.nickErr = ""
	m.nickInput.SetValue("")
	m.nickInput.Focus()
}

func (m *Model) handleNicknameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.machine.ConfirmNickname(m.nickInput.Value()); err != nil {
			// Re-enterable: the operator stays on this screen.
			m.nickErr = err.Error()
			return nil
		}
		m.nickErr = ""
		m.nickInput.Blur()
		m.startSession()
		return nil
	case tea.KeyEsc:
		m.nickInput.Blur()
		m.machine.GoToDifficultySelect()
		return nil
	}
	var cmd tea.Cmd
	m.nickInput, cmd = m.nickInput.Update(msg)
	return cmd
}

func (m *Model) handlePlayKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case " ":
		m.toggleKey()
	case "c":
		m.keyer.Clear()
	case "esc":
		m.abandonSession()
	}
	return nil
}

func (m *Model) handleGameOverKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", " ":
		m.machine.GoToMainMenu()
	}
	return nil
}

func (m *Model) handleHighScoresKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "e", "1":
		m.boardDiff = model.Easy
	case "h", "2":
		m.boardDiff = model.Hard
	case "esc", "enter", "q":
		m.machine.GoToMainMenu()
	}
	return nil
}

func (m *Model) selectMenuItem(index int) {
	switch index {
	case 0:
		m.machine.GoToDifficultySelect()
	case 1:
		m.startSession()
		m.machine.StartPractice()
	case 2:
		m.machine.GoToHighScores()
	case 3:
		m.quitting = true
	}
}

// toggleKey flips the simulated telegraph key. Closing it presses the key;
// opening it releases with the measured hold duration.
func (m *Model) toggleKey() {
	now := time.Now()
	if !m.keyDown {
		m.keyDown = true
		m.keyDownAt = now
		m.keyer.OnPress()
		return
	}
	m.keyDown = false
	m.keyer.OnRelease(now.Sub(m.keyDownAt))
}

func (m *Model) resetKeying() {
	m.keyDown = false
	m.keyer.Clear()
	m.needle.ForceReset()
}

func (m *Model) startSession() {
	m.resetKeying()
	m.sessionSaved = false
	m.rank = 0
}

func (m *Model) abandonSession() {
	m.resetKeying()
	m.machine.GoToMainMenu()
}

// onDecoded receives completed characters from the accumulator. In the
// keyed menu a decoded digit selects the entry; in play modes the machine
// matches it against the target.
func (m *Model) onDecoded(ch rune) {
	if m.debug {
		log.Printf("tui: decoded %q", ch)
	}
	switch m.machine.Mode() {
	case game.ModeNumberedMenu:
		if ch >= '1' && ch <= rune('0'+len(menuItems)) {
			m.selectMenuItem(int(ch - '1'))
		}
	case game.ModePlaying, game.ModePractice:
		m.machine.OnCharacter(ch)
	}
}

// finishSession stores the finished session in the telemetry database and
// resolves the leaderboard rank. The score record itself was already
// persisted by the machine.
func (m *Model) finishSession() {
	if m.keyDown {
		m.keyDown = false
	}
	m.needle.ForceReset()
	m.keyer.Clear()
	m.rank = m.machine.Rank()

	if m.sessionSaved || m.stats == nil {
		return
	}
	summary := m.machine.Summary()
	if summary == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := m.stats.InsertSession(ctx, *summary, m.machine.LetterStats()); err != nil {
		log.Printf("tui: save session telemetry: %v", err)
	}
	m.sessionSaved = true
}
