package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRecord = errors.New("invalid story record")

var validate = validator.New()

// record accepts the current field names and the snake_case keys written by
// earlier versions of the save format.
type record struct {
	StoryID        string    `json:"storyId"`
	Stage          string    `json:"stage"`
	Genre          string    `json:"genre"`
	CharacterName  string    `json:"characterName"`
	CharacterTrait string    `json:"characterTrait"`
	CurrentText    string    `json:"currentText"`
	ChoicesMade    []string  `json:"choicesMade"`
	PathTaken      []Segment `json:"pathTaken"`
	TurnCount      *int      `json:"turnCount"`

	LegacyStoryID        string    `json:"story_id"`
	LegacyCharacterName  string    `json:"character_name"`
	LegacyCharacterTrait string    `json:"character_trait"`
	LegacyCurrentText    string    `json:"current_text"`
	LegacyChoicesMade    []string  `json:"choices_made"`
	LegacyPathTaken      []Segment `json:"path_taken"`
	LegacyTurnCount      *int      `json:"turn_count"`
}

// Encode renders the state as indented JSON.
func Encode(s *NarrativeState) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding story %s: %w", s.StoryID, err)
	}
	return data, nil
}

// Decode parses a stored record, fills missing fields with defaults and
// validates the result.
func Decode(data []byte) (*NarrativeState, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	s := &NarrativeState{
		StoryID:        firstNonEmpty(r.StoryID, r.LegacyStoryID),
		Stage:          Stage(strings.ToLower(strings.TrimSpace(r.Stage))),
		Genre:          r.Genre,
		CharacterName:  firstNonEmpty(r.CharacterName, r.LegacyCharacterName),
		CharacterTrait: firstNonEmpty(r.CharacterTrait, r.LegacyCharacterTrait),
		CurrentText:    firstNonEmpty(r.CurrentText, r.LegacyCurrentText),
		ChoicesMade:    r.ChoicesMade,
		PathTaken:      Path(r.PathTaken),
	}
	if s.ChoicesMade == nil {
		s.ChoicesMade = r.LegacyChoicesMade
	}
	if s.ChoicesMade == nil {
		s.ChoicesMade = []string{}
	}
	if s.PathTaken == nil {
		s.PathTaken = Path(r.LegacyPathTaken)
	}
	if s.PathTaken == nil {
		s.PathTaken = Path{}
	}

	switch {
	case r.TurnCount != nil:
		s.TurnCount = *r.TurnCount
	case r.LegacyTurnCount != nil:
		s.TurnCount = *r.LegacyTurnCount
	default:
		s.TurnCount = len(s.ChoicesMade)
	}

	if s.Stage == "" {
		s.Stage = StageWelcome
		if s.CurrentText != "" {
			s.Stage = StageStory
		}
	}
	s.RecountWords()

	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
