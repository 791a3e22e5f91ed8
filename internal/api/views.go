package api

import (
	"taleweaver/internal/game"
	"taleweaver/internal/game/director"
)

// View is the presentation of one session returned by every session route.
type View struct {
	SessionID      string         `json:"sessionId"`
	Stage          game.Stage     `json:"stage"`
	StoryID        string         `json:"storyId"`
	Genre          string         `json:"genre"`
	CharacterName  string         `json:"characterName"`
	CharacterTrait string         `json:"characterTrait"`
	CurrentText    string         `json:"currentText"`
	Starters       []string       `json:"starters"`
	Choices        []string       `json:"choices"`
	Ending         string         `json:"ending,omitempty"`
	Recap          string         `json:"recap,omitempty"`
	Stats          director.Stats `json:"stats"`
	Notice         *NoticeView    `json:"notice,omitempty"`
	SavedKey       string         `json:"savedKey,omitempty"`
}

type NoticeView struct {
	Kind    director.NoticeKind `json:"kind"`
	Message string              `json:"message"`
}

func newView(sessionID string, d *director.Director) View {
	s := d.State()
	v := View{
		SessionID:      sessionID,
		Stage:          s.Stage,
		StoryID:        s.StoryID,
		Genre:          s.Genre,
		CharacterName:  s.CharacterName,
		CharacterTrait: s.CharacterTrait,
		CurrentText:    s.CurrentText,
		Starters:       nonNil(d.PendingStarters()),
		Choices:        nonNil(d.PendingChoices()),
		Stats:          d.Stats(),
		SavedKey:       d.LastKey(),
	}
	if c, ok := d.Conclusion(); ok {
		v.Ending, v.Recap = c.Text, c.Recap
	}
	return v
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

type setupRequest struct {
	Genre          string `json:"genre" binding:"required"`
	CharacterName  string `json:"characterName"`
	CharacterTrait string `json:"characterTrait"`
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
}

type resumeRequest struct {
	Key string `json:"key" binding:"required"`
}
