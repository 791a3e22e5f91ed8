package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taleweaver/internal/game"
	"taleweaver/internal/game/director"
	"taleweaver/internal/game/narration"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		return m.handleActionDone(msg)
	case savedListMsg:
		return m.handleSavedList(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case animationTickMsg:
		return m.handleAnimation(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m Model) handleAnimation(msg animationTickMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		m.animationFrame++
		return m, animationTimer()
	}
	return m, nil
}

func (m Model) startLoading(cmd tea.Cmd) (Model, tea.Cmd) {
	m.loading = true
	m.animationFrame = 0
	return m, tea.Batch(cmd, animationTimer())
}

// handleActionDone records the director's new state and fetches whatever
// the stage needs next: choices in Story, the conclusion in Ending.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.snap = msg.snap
	if msg.err != nil {
		m.notice = noticeText(msg.err)
		if n, ok := director.AsNotice(msg.err); !ok || n.Kind != director.NoticePersistence {
			return m, nil
		}
	}

	switch m.snap.state.Stage {
	case game.StageStory:
		if len(m.snap.choices) == 0 {
			return m.startLoading(m.run(generateChoices))
		}
	case game.StageEnding:
		if !m.snap.concluded {
			return m.startLoading(m.run(generateEnding))
		}
	}
	return m, nil
}

func (m Model) handleSavedList(msg savedListMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.notice = "Saved stories could not be listed."
		m.mode = modeMenu
		return m, nil
	}
	m.saved = msg.stories
	if len(m.saved) == 0 {
		m.notice = "No saved stories yet."
		m.mode = modeMenu
	}
	return m, nil
}

func noticeText(err error) string {
	if n, ok := director.AsNotice(err); ok {
		return n.Message
	}
	return "Error: " + err.Error()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch m.mode {
	case modeName, modeTrait, modeCustom:
		return m.handleTextInput(msg)
	case modeSaved:
		return m.handleSavedKey(msg)
	}

	key := msg.String()
	if key == "q" {
		return m, tea.Quit
	}
	m.notice = ""

	switch key {
	case "r":
		return m.handleActionDone(m.sync(func(d *director.Director) error {
			d.Reset()
			return nil
		}))
	case "l":
		m.mode = modeSaved
		m.saved = nil
		return m.startLoading(m.listSaved())
	}

	switch m.snap.state.Stage {
	case game.StageWelcome:
		if key == "enter" {
			return m.handleActionDone(m.sync(func(d *director.Director) error {
				return d.Begin()
			}))
		}
	case game.StageSetup:
		return m.handleSetupKey(key)
	case game.StageStory:
		return m.handleStoryKey(key)
	}
	return m, nil
}

func (m Model) handleSetupKey(key string) (tea.Model, tea.Cmd) {
	if len(m.snap.starters) > 0 {
		if i, ok := menuIndex(key, len(m.snap.starters)); ok {
			return m.startLoading(m.run(selectStarter(i)))
		}
		return m, nil
	}
	if i, ok := menuIndex(key, len(narration.Genres)); ok {
		m.genre = narration.Genres[i]
		m.mode = modeName
		m.input = ""
	}
	return m, nil
}

func (m Model) handleStoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "/":
		m.mode = modeCustom
		m.input = ""
		return m, nil
	case "s":
		return m.startLoading(m.run(saveStory))
	case "e":
		done := m.sync(func(d *director.Director) error { return d.EndStory() })
		return m.handleActionDone(done)
	}
	if i, ok := menuIndex(key, len(m.snap.choices)); ok {
		return m.startLoading(m.run(choose(i)))
	}
	return m, nil
}

func (m Model) handleSavedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "q" {
		m.mode = modeMenu
		return m, nil
	}
	if i, ok := menuIndex(key, min(len(m.saved), 9)); ok {
		m.mode = modeMenu
		return m.startLoading(m.run(resume(m.saved[i].Key)))
	}
	return m, nil
}

func (m Model) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeMenu
		m.input = ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	value := strings.TrimSpace(m.input)
	m.input = ""
	switch m.mode {
	case modeName:
		m.name = value
		m.mode = modeTrait
		return m, nil
	case modeTrait:
		m.mode = modeMenu
		done := m.sync(func(d *director.Director) error {
			return d.Configure(m.genre, m.name, value)
		})
		if done.err != nil {
			return m.handleActionDone(done)
		}
		m.snap = done.snap
		return m.startLoading(m.run(generateStarters))
	default:
		if value == "" {
			return m, nil
		}
		m.mode = modeMenu
		return m.startLoading(m.run(chooseCustom(value)))
	}
}

// menuIndex maps the keys 1-9 to a zero-based index below n.
func menuIndex(key string, n int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	i := int(key[0] - '1')
	return i, i < n
}
