package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taleweaver/internal/game"
	"taleweaver/internal/game/director"
)

// Lister lists saved stories for the resume menu.
type Lister interface {
	List(ctx context.Context) ([]game.Summary, error)
}

type inputMode int

const (
	modeMenu inputMode = iota
	modeName
	modeTrait
	modeCustom
	modeSaved
)

// snapshot is what the view renders. It is taken on the command goroutine
// right after the director finishes, so View never reads the director.
type snapshot struct {
	state      game.NarrativeState
	starters   []string
	choices    []string
	stats      director.Stats
	conclusion director.Conclusion
	concluded  bool
	lastKey    string
}

func takeSnapshot(d *director.Director) snapshot {
	c, ok := d.Conclusion()
	return snapshot{
		state:      d.State(),
		starters:   d.PendingStarters(),
		choices:    d.PendingChoices(),
		stats:      d.Stats(),
		conclusion: c,
		concluded:  ok,
		lastKey:    d.LastKey(),
	}
}

type Model struct {
	ctx      context.Context
	director *director.Director
	stories  Lister

	width  int
	height int

	mode           inputMode
	input          string
	genre          string
	name           string
	saved          []game.Summary
	loading        bool
	animationFrame int
	notice         string
	snap           snapshot
}

func NewModel(ctx context.Context, d *director.Director, stories Lister) Model {
	return Model{
		ctx:      ctx,
		director: d,
		stories:  stories,
		width:    80,
		height:   24,
		snap:     takeSnapshot(d),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

type animationTickMsg struct{}

// actionDoneMsg reports a finished director call.
type actionDoneMsg struct {
	snap snapshot
	err  error
}

type savedListMsg struct {
	stories []game.Summary
	err     error
}
