package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/woohung/morse-game/internal/game"
	"github.com/woohung/morse-game/internal/morse"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFE66D"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6EE86E"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	currentStyle  = pendingStyle.Underline(true).Foreground(lipgloss.Color("#F0F0F0"))
	morseStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	bonusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	bigLetter     = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder())
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.machine.Mode() {
	case game.ModeMainMenu:
		body = m.viewMainMenu()
	case game.ModeNumberedMenu:
		body = m.viewNumberedMenu()
	case game.ModeDifficultySelect:
		body = m.viewDifficultySelect()
	case game.ModeNicknameInput:
		body = m.viewNicknameInput()
	case game.ModePlaying:
		body = m.viewPlaying()
	case game.ModePractice:
		body = m.viewPractice()
	case game.ModeGameOver:
		body = m.viewGameOver()
	case game.ModeHighScores:
		body = m.viewHighScores()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) viewMainMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MORSE TELEGRAPH"))
	b.WriteString("\n\n")
	for i, item := range menuItems {
		line := fmt.Sprintf("  %d. %s", i+1, item)
		if i == m.menuIndex {
			line = selectedStyle.Render("> " + line[2:])
		} else {
			line = itemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("arrows/enter or digit to select · tab for keyed menu · q to quit"))
	return b.String()
}

func (m *Model) viewNumberedMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("KEYED MENU"))
	b.WriteString("\n\n")
	for i, item := range menuItems {
		code, err := morse.Encode(rune('1' + i))
		if err != nil {
			code = "?"
		}
		b.WriteString(fmt.Sprintf("  %d. %-12s %s\n", i+1, item, morseStyle.Render(code)))
	}
	b.WriteString("\n")
	b.WriteString(m.viewKeyingLine())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("key a digit with space · c clears · tab back"))
	return b.String()
}

func (m *Model) viewDifficultySelect() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SELECT DIFFICULTY"))
	b.WriteString("\n\n")
	b.WriteString(itemStyle.Render("  1. Easy   - short words, two minutes\n"))
	b.WriteString(itemStyle.Render("  2. Hard   - longer words, ninety seconds, streak bonuses\n"))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("1/e easy · 2/h hard · esc back"))
	return b.String()
}

func (m *Model) viewNicknameInput() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("OPERATOR NICKNAME"))
	b.WriteString("\n\n")
	b.WriteString(m.nickInput.View())
	b.WriteString("\n")
	if m.nickErr != "" {
		b.WriteString(errStyle.Render(m.nickErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to start · esc back"))
	return b.String()
}

func (m *Model) viewPlaying() string {
	snap := m.machine.Snapshot()
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s  words %d  errors %d  streak %d\n\n",
		titleStyle.Render(snap.Nickname),
		itemStyle.Render(string(snap.Difficulty)),
		snap.WordsCompleted, snap.TotalErrors, snap.Streak))

	b.WriteString(renderWord(snap))
	b.WriteString("\n\n")
	b.WriteString(m.viewKeyingLine())
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("word  %s %s\n", m.wordBar.ViewAs(ratio(snap.WordRemaining, snap.WordTimeLimit)), formatSeconds(snap.WordRemaining)))
	b.WriteString(fmt.Sprintf("time  %s %s\n", m.clockBar.ViewAs(ratio(snap.TimeRemaining, snap.SessionDuration)), formatSeconds(snap.TimeRemaining)))

	if !snap.LastBonusAt.IsZero() && time.Since(snap.LastBonusAt) < bonusFlashDuration {
		b.WriteString("\n")
		b.WriteString(bonusStyle.Render(fmt.Sprintf("+%d sec!", int(snap.LastBonus.Seconds()))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("space keys the telegraph · c clears input · esc abandons"))
	return b.String()
}

func renderWord(snap game.Snapshot) string {
	var b strings.Builder
	for i, ch := range snap.Word {
		style := pendingStyle
		switch snap.Statuses[i] {
		case game.LetterCorrect:
			style = correctStyle
		case game.LetterWrong:
			style = wrongStyle
		}
		if i == snap.CurrentIndex && snap.Statuses[i] != game.LetterCorrect {
			if snap.Statuses[i] == game.LetterWrong {
				style = wrongStyle.Underline(true)
			} else {
				style = currentStyle
			}
		}
		b.WriteString(style.Render(string(ch)))
		b.WriteString(" ")
	}
	return b.String()
}

// viewKeyingLine shows the pending symbol sequence and the needle gauge.
func (m *Model) viewKeyingLine() string {
	seq := m.keyer.Sequence()
	if seq == "" {
		seq = "·"
	}
	keyState := "open"
	if m.keyDown {
		keyState = "CLOSED"
	}
	return fmt.Sprintf("%s  %s\nneedle %s %.2f",
		morseStyle.Render(seq),
		hintStyle.Render("key "+keyState),
		m.gauge.ViewAs(m.needle.Value()),
		m.needle.Value())
}

func (m *Model) viewPractice() string {
	snap := m.machine.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("PRACTICE"))
	b.WriteString("\n\n")

	letterStyle := bigLetter.BorderForeground(lipgloss.Color("#8C8C8C"))
	switch snap.PracticeStatus {
	case game.LetterCorrect:
		letterStyle = bigLetter.BorderForeground(lipgloss.Color("#6EE86E")).Foreground(lipgloss.Color("#6EE86E"))
	case game.LetterWrong:
		letterStyle = bigLetter.BorderForeground(lipgloss.Color("#FF4D4F")).Foreground(lipgloss.Color("#FF4D4F"))
	}
	b.WriteString(letterStyle.Render(string(snap.PracticeLetter)))
	b.WriteString("\n\n")

	if code, err := morse.Encode(snap.PracticeLetter); err == nil {
		b.WriteString(hintStyle.Render("hint " + code))
		b.WriteString("\n\n")
	}
	b.WriteString(m.viewKeyingLine())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("completed %d  errors %d\n", snap.PracticeCompleted, snap.PracticeErrors))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("space keys the telegraph · c clears input · esc back"))
	return b.String()
}

func (m *Model) viewGameOver() string {
	snap := m.machine.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("GAME OVER"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("operator  %s (%s)\n", snap.Nickname, snap.Difficulty))
	b.WriteString(fmt.Sprintf("score     %d\n", snap.Score))
	b.WriteString(fmt.Sprintf("words     %d\n", snap.WordsCompleted))
	b.WriteString(fmt.Sprintf("errors    %d\n", snap.TotalErrors))
	if m.rank > 0 {
		b.WriteString(fmt.Sprintf("rank      #%d on the %s board\n", m.rank, snap.Difficulty))
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter for menu"))
	return b.String()
}

func (m *Model) viewHighScores() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("HIGH SCORES · " + strings.ToUpper(string(m.boardDiff))))
	b.WriteString("\n\n")

	top := m.scores.TopScores(m.boardDiff, 10)
	if len(top) == 0 {
		b.WriteString(itemStyle.Render("no scores yet\n"))
	}
	for i, rec := range top {
		b.WriteString(fmt.Sprintf("%2d. %-16s %3d  words %3d  errors %3d  %5.1fs\n",
			i+1, rec.Nickname, rec.Score, rec.WordsCompleted, rec.Errors, rec.TimeTaken))
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("e easy board · h hard board · esc back"))
	return b.String()
}

func ratio(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 0
	}
	r := float64(part) / float64(whole)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%4.1fs", d.Seconds())
}
