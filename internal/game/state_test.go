package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNarrativeState(t *testing.T) {
	s := NewNarrativeState("abc")

	assert.Equal(t, "abc", s.StoryID)
	assert.Equal(t, StageWelcome, s.Stage)
	assert.Empty(t, s.CurrentText)
	assert.NotNil(t, s.ChoicesMade)
	assert.NotNil(t, s.PathTaken)
	assert.Zero(t, s.TurnCount)
}

func TestAppendTextRecountsWords(t *testing.T) {
	s := NewNarrativeState("abc")

	s.AppendText("\n\n", "The door creaks.")
	assert.Equal(t, "The door creaks.", s.CurrentText)
	assert.Equal(t, 3, s.WordCount)

	s.AppendText("\n\n[You chose: Open it]\n\n", "Darkness waits.")
	assert.Equal(t, "The door creaks.\n\n[You chose: Open it]\n\nDarkness waits.", s.CurrentText)
	assert.Equal(t, 9, s.WordCount)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewNarrativeState("abc")
	s.AddBeginning("Start")
	s.AddChoice("Run")

	c := s.Clone()
	c.AddChoice("Hide")
	c.CurrentText = "changed"

	assert.Equal(t, []string{"Run"}, s.ChoicesMade)
	assert.Len(t, s.PathTaken, 2)
	assert.Equal(t, []string{"Run", "Hide"}, c.ChoicesMade)
	assert.Len(t, c.PathTaken, 3)
	assert.Empty(t, s.CurrentText)
}

func TestPathHelpers(t *testing.T) {
	s := NewNarrativeState("abc")
	s.AddBeginning("B")
	s.AddChoice("c1")
	s.AddStory("s1")
	s.AddCustomChoice("c2")
	s.AddStory("s2")

	last, ok := s.PathTaken.Last(SegmentStory)
	require.True(t, ok)
	assert.Equal(t, "s2", last.Text)

	_, ok = s.PathTaken.Last(SegmentEnding)
	assert.False(t, ok)

	assert.Equal(t, 2, s.PathTaken.Count(SegmentStory))
	assert.Equal(t, []string{"c1", "c2"}, s.ChoicesMade)
}

func TestProtagonist(t *testing.T) {
	s := NewNarrativeState("abc")
	assert.Equal(t, "the protagonist", s.Protagonist())

	s.CharacterName = "  Ada "
	assert.Equal(t, "Ada", s.Protagonist())
}

func TestSummary(t *testing.T) {
	s := NewNarrativeState("abc")
	s.Genre = "Horror"
	s.CharacterName = "Ada"
	s.AddChoice("Run")
	s.AppendText("", "one two three")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	sum := s.Summary("abc_20240501_120000.json", at)

	assert.Equal(t, Summary{
		Key:         "abc_20240501_120000.json",
		StoryID:     "abc",
		Date:        at,
		Genre:       "Horror",
		Character:   "Ada",
		ChoiceCount: 1,
		WordCount:   3,
	}, sum)
}
