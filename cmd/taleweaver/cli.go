package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taleweaver/internal/export"
	"taleweaver/internal/logging"
)

const defaultReviewCount = 10

func runList(ctx context.Context, a *app, w io.Writer) error {
	summaries, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing stories: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No saved stories yet. Play one first!")
		return nil
	}

	fmt.Fprintf(w, "Saved stories (%d):\n\n", len(summaries))
	for _, s := range summaries {
		character := s.Character
		if character == "" {
			character = "-"
		}
		fmt.Fprintf(w, "%s\n  %s | %s | %s | %d choices | %d words\n",
			s.Key, s.Date.Format("2006-01-02 15:04"), s.Genre, character, s.ChoiceCount, s.WordCount)
	}
	return nil
}

// runExport writes a saved story to file, or to w as text when no file is
// given. The file extension picks the format.
func runExport(ctx context.Context, a *app, w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taleweaver export <key> [file]")
	}
	state, err := a.store.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	if len(args) < 2 {
		return export.Text(w, state)
	}

	path := args[1]
	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, format, state); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %s to %s\n", args[0], path)
	return nil
}

func runReview(ctx context.Context, a *app, w io.Writer, args []string) error {
	limit := defaultReviewCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}

	log, err := a.completionLog()
	if err != nil {
		return err
	}
	completions, err := log.RecentCompletions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	if len(completions) == 0 {
		fmt.Fprintln(w, "No completions found. Enable storage.log_completions and play a story first!")
		return nil
	}

	fmt.Fprintf(w, "Recent completions (%d):\n\n", len(completions))
	for _, c := range completions {
		var meta logging.CompletionMetadata
		if err := json.Unmarshal([]byte(c.Metadata), &meta); err == nil {
			fmt.Fprintf(w, "[%d] %s | %s | %s/%s | %v | story %s\n",
				c.ID, c.Timestamp.Format("2006-01-02 15:04:05"), c.Operation,
				meta.Backend, meta.Model, meta.ResponseTime, c.StoryID)
		} else {
			fmt.Fprintf(w, "[%d] %s | %s | story %s\n",
				c.ID, c.Timestamp.Format("2006-01-02 15:04:05"), c.Operation, c.StoryID)
		}

		fmt.Fprintf(w, "Response: %s\n", c.Response)
		if c.Rating != nil {
			fmt.Fprintf(w, "Rating: %d/5", *c.Rating)
			if c.Notes != nil {
				fmt.Fprintf(w, " - %s", *c.Notes)
			}
		} else {
			fmt.Fprint(w, "Rating: not rated")
		}
		fmt.Fprintln(w, "\n"+strings.Repeat("-", 50))
	}

	fmt.Fprintln(w, "\nTo rate a completion: taleweaver rate <id> <rating> [notes]")
	return nil
}

func runRate(ctx context.Context, a *app, w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: taleweaver rate <id> <rating> [notes]")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid rating: %w", err)
	}
	notes := strings.Join(args[2:], " ")

	log, err := a.completionLog()
	if err != nil {
		return err
	}
	if err := log.RateCompletion(ctx, id, rating, notes); err != nil {
		return fmt.Errorf("failed to rate completion: %w", err)
	}

	fmt.Fprintf(w, "Rated completion %d as %d/5", id, rating)
	if notes != "" {
		fmt.Fprintf(w, " with notes: %s", notes)
	}
	fmt.Fprintln(w)
	return nil
}

// completionLog opens the completion database even when logging new
// completions is turned off, so past ones can still be reviewed.
func (a *app) completionLog() (*logging.CompletionLogger, error) {
	if a.completions != nil {
		return a.completions, nil
	}
	log, err := logging.NewCompletionLogger(a.cfg.Storage.CompletionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion database: %w", err)
	}
	a.completions = log
	a.closers = append(a.closers, log)
	return log, nil
}
