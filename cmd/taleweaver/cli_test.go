package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taleweaver/internal/config"
	"taleweaver/internal/game"
	"taleweaver/internal/logging"
	"taleweaver/internal/storage"
)

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(dir, "saved_stories")
	cfg.Storage.CompletionsPath = filepath.Join(dir, "completions.db")

	a := &app{
		cfg:    &cfg,
		logger: zap.NewNop(),
		store:  storage.NewFileStore(cfg.Storage.Dir),
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func savedStory(t *testing.T, a *app) string {
	t.Helper()
	s := game.NewNarrativeState("story-7")
	s.Stage = game.StageStory
	s.Genre = "Horror"
	s.CharacterName = "Jonah"
	s.AppendText("", "The cellar door was open.")
	s.AddBeginning("The cellar door was open.")
	s.AddChoice("Go down")
	s.AppendText("\n\n[You chose: Go down]\n\n", "Something breathed below.")
	s.AddStory("Something breathed below.")

	key, err := a.store.Save(context.Background(), s)
	require.NoError(t, err)
	return key
}

func TestRunList(t *testing.T) {
	a := testApp(t)
	var out bytes.Buffer

	require.NoError(t, runList(context.Background(), a, &out))
	assert.Contains(t, out.String(), "No saved stories yet")

	key := savedStory(t, a)
	out.Reset()
	require.NoError(t, runList(context.Background(), a, &out))
	assert.Contains(t, out.String(), "Saved stories (1)")
	assert.Contains(t, out.String(), key)
	assert.Contains(t, out.String(), "Horror | Jonah | 1 choices")
}

func TestRunExport(t *testing.T) {
	a := testApp(t)
	key := savedStory(t, a)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runExport(ctx, a, &out, []string{key}))
	assert.Contains(t, out.String(), "Horror Story: Jonah")
	assert.Contains(t, out.String(), "[You chose: Go down]")

	pdfPath := filepath.Join(t.TempDir(), "story.pdf")
	out.Reset()
	require.NoError(t, runExport(ctx, a, &out, []string{key, pdfPath}))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	assert.Error(t, runExport(ctx, a, &out, nil))
	assert.ErrorIs(t, runExport(ctx, a, &out, []string{"missing_20240101_000000.json"}), storage.ErrNotFound)
	assert.Error(t, runExport(ctx, a, &out, []string{key, filepath.Join(t.TempDir(), "story.docx")}))
}

func TestRunReviewAndRate(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runReview(ctx, a, &out, nil))
	assert.Contains(t, out.String(), "No completions found")

	log, err := a.completionLog()
	require.NoError(t, err)
	require.NoError(t, log.LogCompletion(ctx, logging.Completion{
		StoryID:   "story-7",
		Operation: "continuation",
		Prompt:    "Continue the story",
		Response:  "Something breathed below.",
		Metadata: logging.CompletionMetadata{
			Backend:      "ollama",
			Model:        "llama3",
			Attempts:     1,
			ResponseTime: 1500 * time.Millisecond,
		},
	}))

	out.Reset()
	require.NoError(t, runReview(ctx, a, &out, []string{"5"}))
	assert.Contains(t, out.String(), "Recent completions (1)")
	assert.Contains(t, out.String(), "continuation | ollama/llama3")
	assert.Contains(t, out.String(), "Rating: not rated")

	recent, err := log.RecentCompletions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	id := recent[0].ID

	out.Reset()
	require.NoError(t, runRate(ctx, a, &out, []string{strconv.Itoa(id), "4", "eerie", "and", "tight"}))
	assert.Contains(t, out.String(), "as 4/5 with notes: eerie and tight")

	out.Reset()
	require.NoError(t, runReview(ctx, a, &out, nil))
	assert.Contains(t, out.String(), "Rating: 4/5 - eerie and tight")

	assert.Error(t, runRate(ctx, a, &out, []string{strconv.Itoa(id), "9"}))
	assert.Error(t, runRate(ctx, a, &out, []string{"x", "3"}))
	assert.Error(t, runRate(ctx, a, &out, []string{"1"}))
	assert.Error(t, runReview(ctx, a, &out, []string{"zero"}))
}

func TestRunReadOnlyCommandsWithoutAPIKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TALEWEAVER_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TALEWEAVER_LLM_API_KEY", "")
	t.Setenv("TALEWEAVER_STORAGE_DIR", filepath.Join(dir, "saved_stories"))
	t.Setenv("TALEWEAVER_STORAGE_COMPLETIONS_PATH", filepath.Join(dir, "completions.db"))
	t.Setenv("TALEWEAVER_LOG_LEVEL", "error")
	ctx := context.Background()

	require.NoError(t, run(ctx, []string{"list"}))
	require.NoError(t, run(ctx, []string{"review"}))

	a, err := createApp(ctx, "", false)
	require.NoError(t, err)
	defer a.Close()
	_, err = a.generator(ctx)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"dance"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "dance"`)

	assert.NoError(t, run(context.Background(), []string{"help"}))
}
