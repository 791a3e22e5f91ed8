package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleweaver/internal/game"
)

func finishedStory() *game.NarrativeState {
	s := game.NewNarrativeState("story-42")
	s.Stage = game.StageEnding
	s.Genre = "Adventure"
	s.CharacterName = "Mara"
	s.AppendText("", "The boat drifted.")
	s.AddBeginning("The boat drifted.")
	s.AddChoice("Row ashore")
	s.AppendText("\n\n[You chose: Row ashore]\n\n", "Sand met the hull.")
	s.AddStory("Sand met the hull.")
	s.AppendText("\n\n", "Home at last.")
	s.AddEnding("Home at last.")
	s.TurnCount = 1
	return s
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, finishedStory()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Adventure Story: Mara\n=====================\n"))
	assert.Contains(t, out, "Story story-42 | 1 choices | 14 words")
	assert.Contains(t, out, "[You chose: Row ashore]")
	assert.Contains(t, out, "Home at last.")
	assert.True(t, strings.HasSuffix(out, "Your path: Row ashore.\n"))
}

func TestTextWithoutChoices(t *testing.T) {
	s := game.NewNarrativeState("s")
	s.AppendText("", "Quiet.")

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, s))
	assert.True(t, strings.HasPrefix(buf.String(), "Untitled Story\n"))
	assert.NotContains(t, buf.String(), "Your path")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, finishedStory()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"TXT", FormatText, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, ".txt", FormatText.Extension())
}
