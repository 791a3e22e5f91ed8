package logging

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *CompletionLogger {
	t.Helper()
	cl, err := NewCompletionLogger(filepath.Join(t.TempDir(), "completions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cl.Close() })
	return cl
}

func TestLogAndReviewCompletions(t *testing.T) {
	cl := newTestLogger(t)
	ctx := context.Background()

	for _, op := range []string{"starters", "choices", "continuation"} {
		require.NoError(t, cl.LogCompletion(ctx, Completion{
			StoryID:   "story-1",
			Operation: op,
			Prompt:    "prompt for " + op,
			Response:  "response for " + op,
			Metadata: CompletionMetadata{
				Backend:      "gemini",
				Model:        "gemini-2.0-flash",
				Temperature:  0.7,
				Attempts:     1,
				ResponseTime: 1500 * time.Millisecond,
			},
		}))
	}

	recent, err := cl.RecentCompletions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "continuation", recent[0].Operation)
	assert.Equal(t, "choices", recent[1].Operation)
	assert.Equal(t, "story-1", recent[0].StoryID)
	assert.Nil(t, recent[0].Rating)

	var meta CompletionMetadata
	require.NoError(t, json.Unmarshal([]byte(recent[0].Metadata), &meta))
	assert.Equal(t, "gemini", meta.Backend)
	assert.Equal(t, 1500*time.Millisecond, meta.ResponseTime)
}

func TestRateCompletion(t *testing.T) {
	cl := newTestLogger(t)
	ctx := context.Background()

	require.NoError(t, cl.LogCompletion(ctx, Completion{StoryID: "s", Operation: "ending", Prompt: "p", Response: "r"}))
	recent, err := cl.RecentCompletions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	id := recent[0].ID

	require.NoError(t, cl.RateCompletion(ctx, id, 4, "moody"))

	recent, err = cl.RecentCompletions(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, recent[0].Rating)
	assert.Equal(t, 4, *recent[0].Rating)
	require.NotNil(t, recent[0].Notes)
	assert.Equal(t, "moody", *recent[0].Notes)

	assert.Error(t, cl.RateCompletion(ctx, id, 6, ""))
	assert.Error(t, cl.RateCompletion(ctx, id+100, 3, ""))
}
