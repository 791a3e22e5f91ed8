package game

import (
	"strings"
	"time"
)

type Stage string

const (
	StageWelcome Stage = "welcome"
	StageSetup   Stage = "setup"
	StageStory   Stage = "story"
	StageEnding  Stage = "ending"
)

func (s Stage) Valid() bool {
	switch s {
	case StageWelcome, StageSetup, StageStory, StageEnding:
		return true
	}
	return false
}

// NarrativeState is the full record of one story session. Only the director
// mutates it; everything else works on copies.
type NarrativeState struct {
	StoryID        string   `json:"storyId" validate:"required"`
	Stage          Stage    `json:"stage" validate:"oneof=welcome setup story ending"`
	Genre          string   `json:"genre"`
	CharacterName  string   `json:"characterName"`
	CharacterTrait string   `json:"characterTrait"`
	CurrentText    string   `json:"currentText"`
	ChoicesMade    []string `json:"choicesMade"`
	PathTaken      Path     `json:"pathTaken" validate:"dive"`
	TurnCount      int      `json:"turnCount" validate:"min=0"`
	WordCount      int      `json:"wordCount" validate:"min=0"`
}

func NewNarrativeState(storyID string) *NarrativeState {
	return &NarrativeState{
		StoryID:     storyID,
		Stage:       StageWelcome,
		ChoicesMade: []string{},
		PathTaken:   Path{},
	}
}

func (s *NarrativeState) Clone() *NarrativeState {
	c := *s
	c.ChoicesMade = append([]string{}, s.ChoicesMade...)
	c.PathTaken = s.PathTaken.Entries()
	return &c
}

// AppendText adds text to the narrative, joined by sep when the narrative is
// not empty, and refreshes the derived word count.
func (s *NarrativeState) AppendText(sep, text string) {
	if s.CurrentText == "" {
		s.CurrentText = text
	} else {
		s.CurrentText += sep + text
	}
	s.RecountWords()
}

func (s *NarrativeState) RecountWords() {
	s.WordCount = CountWords(s.CurrentText)
}

// Protagonist returns the character name or a neutral stand-in.
func (s *NarrativeState) Protagonist() string {
	if name := strings.TrimSpace(s.CharacterName); name != "" {
		return name
	}
	return "the protagonist"
}

func (s *NarrativeState) Summary(key string, savedAt time.Time) Summary {
	return Summary{
		Key:         key,
		StoryID:     s.StoryID,
		Date:        savedAt,
		Genre:       s.Genre,
		Character:   s.CharacterName,
		ChoiceCount: len(s.ChoicesMade),
		WordCount:   s.WordCount,
	}
}

func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Summary is the lightweight listing entry for a saved story.
type Summary struct {
	Key         string    `json:"key"`
	StoryID     string    `json:"storyId"`
	Date        time.Time `json:"date"`
	Genre       string    `json:"genre"`
	Character   string    `json:"character"`
	ChoiceCount int       `json:"choiceCount"`
	WordCount   int       `json:"wordCount"`
}
