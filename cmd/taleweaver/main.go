// Command taleweaver plays branching stories written by a language model,
// in the terminal or over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"taleweaver/cmd/taleweaver/ui"
)

const usage = `Usage: taleweaver [command]

Commands:
  play                    Play in the terminal (default)
  serve                   Serve the HTTP API
  list                    List saved stories
  export <key> [file]     Export a saved story (.txt or .pdf)
  review [n]              Show recent completions
  rate <id> <1-5> [notes] Rate a completion

The config file is taken from TALEWEAVER_CONFIG or ~/.config/taleweaver/config.yaml.`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	command := "play"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	case "play", "serve", "list", "export", "review", "--review", "rate":
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}

	a, err := createApp(ctx, "", command == "play")
	if err != nil {
		return err
	}
	defer a.Close()

	switch command {
	case "serve":
		return runServe(ctx, a)
	case "list":
		return runList(ctx, a, os.Stdout)
	case "export":
		return runExport(ctx, a, os.Stdout, args)
	case "review", "--review":
		return runReview(ctx, a, os.Stdout, args)
	case "rate":
		return runRate(ctx, a, os.Stdout, args)
	default:
		return runPlay(ctx, a)
	}
}

func runPlay(ctx context.Context, a *app) error {
	gen, err := a.generator(ctx)
	if err != nil {
		return err
	}
	model := ui.NewModel(ctx, a.newDirector(gen), a.store)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
