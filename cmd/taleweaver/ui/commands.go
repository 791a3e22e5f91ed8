package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taleweaver/internal/game/director"
)

func animationTimer() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// run performs fn against the director off the event loop.
func (m Model) run(fn func(ctx context.Context, d *director.Director) error) tea.Cmd {
	ctx, d := m.ctx, m.director
	return func() tea.Msg {
		err := fn(ctx, d)
		return actionDoneMsg{snap: takeSnapshot(d), err: err}
	}
}

// sync wraps a director call that needs no generation. It may run on the
// event loop because no command is in flight while loading is false.
func (m Model) sync(fn func(d *director.Director) error) actionDoneMsg {
	err := fn(m.director)
	return actionDoneMsg{snap: takeSnapshot(m.director), err: err}
}

func generateStarters(ctx context.Context, d *director.Director) error {
	_, err := d.Starters(ctx)
	return err
}

func generateChoices(ctx context.Context, d *director.Director) error {
	_, err := d.Choices(ctx)
	return err
}

func generateEnding(ctx context.Context, d *director.Director) error {
	_, err := d.Ending(ctx)
	return err
}

func selectStarter(i int) func(context.Context, *director.Director) error {
	return func(ctx context.Context, d *director.Director) error {
		return d.SelectStarter(ctx, i)
	}
}

func choose(i int) func(context.Context, *director.Director) error {
	return func(ctx context.Context, d *director.Director) error {
		return d.Choose(ctx, i)
	}
}

func chooseCustom(action string) func(context.Context, *director.Director) error {
	return func(ctx context.Context, d *director.Director) error {
		return d.ChooseCustom(ctx, action)
	}
}

func resume(key string) func(context.Context, *director.Director) error {
	return func(ctx context.Context, d *director.Director) error {
		return d.Resume(ctx, key)
	}
}

func saveStory(ctx context.Context, d *director.Director) error {
	_, err := d.Save(ctx)
	return err
}

func (m Model) listSaved() tea.Cmd {
	ctx, stories := m.ctx, m.stories
	return func() tea.Msg {
		list, err := stories.List(ctx)
		return savedListMsg{stories: list, err: err}
	}
}
