package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taleweaver/internal/game"
	"taleweaver/internal/game/narration"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func (m Model) View() string {
	inputHeight := 3
	chatHeight := max(m.height-inputHeight, 5)
	contentWidth := max(m.width-4, 20)

	chatPanel := lipgloss.NewStyle().
		Width(m.width - 2).
		Height(chatHeight - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Width(m.width - 4)

	lines := m.body(contentWidth - 2)
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(wrapAndIndent(m.notice, contentWidth-2, " ")))
	}
	if m.loading {
		lines = append(lines, "", loadingStyle.Render(" "+getLoadingAnimation(m.animationFrame)+" The story is being written..."))
	}

	maxLines := max(chatHeight-2, 1)
	lines = strings.Split(strings.Join(lines, "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	chat := chatPanel.Render(strings.Join(lines, "\n"))
	return chat + "\n" + inputStyle.Render(m.footer())
}

func (m Model) body(width int) []string {
	switch m.mode {
	case modeName:
		return []string{titleStyle.Render(m.genre), "", messageStyle.Render(" What is your character's name? (optional)")}
	case modeTrait:
		return []string{titleStyle.Render(m.genre), "", messageStyle.Render(" Describe them in a word or two. (optional)")}
	case modeSaved:
		return m.savedBody(width)
	}

	s := m.snap
	switch s.state.Stage {
	case game.StageWelcome:
		return []string{
			titleStyle.Render("Tale Weaver"),
			"",
			messageStyle.Render(wrapAndIndent("Every story is written as you play. Pick a genre, meet your character, and choose what happens next.", width, " ")),
		}

	case game.StageSetup:
		if len(s.starters) > 0 {
			lines := []string{titleStyle.Render("How does your story begin?"), ""}
			return append(lines, numbered(s.starters, width)...)
		}
		lines := []string{titleStyle.Render("Choose a genre"), ""}
		return append(lines, numbered(narration.Genres, width)...)

	case game.StageStory:
		lines := m.narrative(width)
		if m.mode == modeCustom {
			return append(lines, "", choiceStyle.Render(" What do you do?"))
		}
		if len(s.choices) > 0 {
			lines = append(lines, "", titleStyle.Render("What do you do?"))
			lines = append(lines, numbered(s.choices, width)...)
		}
		return lines

	case game.StageEnding:
		lines := m.narrative(width)
		lines = append(lines, "", titleStyle.Render("The End"))
		if s.concluded && s.conclusion.Recap != "" {
			lines = append(lines, "", messageStyle.Render(wrapAndIndent("Your journey: "+s.conclusion.Recap, width, " ")))
		}
		return lines
	}
	return nil
}

func (m Model) narrative(width int) []string {
	s := m.snap
	header := fmt.Sprintf("%s | turn %d of %d | %d words", s.stats.Genre, s.stats.TurnCount, s.stats.MaxTurns, s.stats.WordCount)
	if s.stats.Character != "" {
		header = s.stats.Character + " | " + header
	}
	lines := []string{helpStyle.Render(header), ""}

	for _, paragraph := range strings.Split(s.state.CurrentText, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		style := messageStyle
		if strings.HasPrefix(paragraph, "[") && strings.HasSuffix(paragraph, "]") {
			style = markerStyle
		}
		lines = append(lines, style.Render(wrapAndIndent(paragraph, width, " ")), "")
	}
	return lines
}

func (m Model) savedBody(width int) []string {
	lines := []string{titleStyle.Render("Saved stories"), ""}
	if m.loading {
		return lines
	}
	for i, s := range m.saved {
		if i == 9 {
			lines = append(lines, helpStyle.Render(fmt.Sprintf(" ...and %d more", len(m.saved)-9)))
			break
		}
		who := s.Character
		if who == "" {
			who = "unnamed"
		}
		entry := fmt.Sprintf("%d. %s, %s (%s, %d choices)", i+1, s.Genre, who, s.Date.Format("Jan 2 15:04"), s.ChoiceCount)
		lines = append(lines, choiceStyle.Render(wrapAndIndent(entry, width, " ")))
	}
	return lines
}

func (m Model) footer() string {
	switch m.mode {
	case modeName, modeTrait, modeCustom:
		return m.input + "│"
	case modeSaved:
		return helpStyle.Render("1-9 resume · esc back")
	}

	switch m.snap.state.Stage {
	case game.StageWelcome:
		return helpStyle.Render("enter begin · l saved stories · q quit")
	case game.StageSetup:
		return helpStyle.Render("1-9 choose · r restart · q quit")
	case game.StageStory:
		return helpStyle.Render("1-9 choose · / your own action · s save · e end · r restart · l saved · q quit")
	default:
		return helpStyle.Render("r new story · l saved stories · q quit")
	}
}

func numbered(items []string, width int) []string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, choiceStyle.Render(wrapAndIndent(fmt.Sprintf("%d. %s", i+1, item), width, " ")))
	}
	return lines
}

func wrapAndIndent(text string, width int, indent string) string {
	if len(text) <= width {
		return indent + text
	}

	var result strings.Builder
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + text
	}

	currentLine := indent + words[0]

	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result.WriteString(currentLine + "\n")
			currentLine = indent + word
		}
	}

	result.WriteString(currentLine)
	return result.String()
}

func getLoadingAnimation(frame int) string {
	arc := []string{"◜", "◠", "◝", "◞", "◡", "◟"}
	return arc[frame%len(arc)]
}
