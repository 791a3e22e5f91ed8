package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	s := NewNarrativeState("story-1")
	s.Stage = StageStory
	s.Genre = "Mystery"
	s.CharacterName = "Ada"
	s.CharacterTrait = "Curious"
	s.AppendText("", "A letter arrives.")
	s.AddBeginning("A letter arrives.")

	data, err := Encode(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"storyId\": \"story-1\"")

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeLegacyRecord(t *testing.T) {
	legacy := `{
  "story_id": "old-1",
  "current_text": "You wake.\n\n[You chose: Look around]\n\nStars everywhere.",
  "choices_made": ["Look around"],
  "path_taken": [
    {"type": "beginning", "text": "You wake."},
    {"type": "choice", "text": "Look around"},
    {"type": "story", "text": "Stars everywhere."}
  ],
  "genre": "Science Fiction",
  "character_name": "Rin",
  "stage": "story"
}`

	s, err := Decode([]byte(legacy))
	require.NoError(t, err)

	assert.Equal(t, "old-1", s.StoryID)
	assert.Equal(t, StageStory, s.Stage)
	assert.Equal(t, "Rin", s.CharacterName)
	assert.Equal(t, []string{"Look around"}, s.ChoicesMade)
	assert.Len(t, s.PathTaken, 3)
	assert.Equal(t, 1, s.TurnCount)
	assert.Equal(t, 8, s.WordCount)
}

func TestDecodeDefaults(t *testing.T) {
	s, err := Decode([]byte(`{"storyId":"x","currentText":"Hello there"}`))
	require.NoError(t, err)

	assert.Equal(t, StageStory, s.Stage)
	assert.NotNil(t, s.ChoicesMade)
	assert.NotNil(t, s.PathTaken)
	assert.Equal(t, 0, s.TurnCount)
	assert.Equal(t, 2, s.WordCount)

	s, err = Decode([]byte(`{"storyId":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, StageWelcome, s.Stage)
}

func TestDecodeIgnoresStoredWordCount(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"storyId":     "x",
		"stage":       "story",
		"currentText": "one two",
		"wordCount":   99,
	})
	require.NoError(t, err)

	s, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, s.WordCount)
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"missing story id", `{"stage":"story"}`},
		{"unknown stage", `{"storyId":"x","stage":"epilogue"}`},
		{"unknown segment", `{"storyId":"x","pathTaken":[{"type":"aside","text":"t"}]}`},
		{"negative turns", `{"storyId":"x","turnCount":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}
