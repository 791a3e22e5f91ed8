package narration

import (
	"fmt"
	"strings"

	"taleweaver/internal/game"
)

// Premise is the fixed setup a story is told against.
type Premise struct {
	Genre          string
	CharacterName  string
	CharacterTrait string
	Density        Density
}

func PremiseOf(s *game.NarrativeState, d Density) Premise {
	return Premise{
		Genre:          s.Genre,
		CharacterName:  s.CharacterName,
		CharacterTrait: s.CharacterTrait,
		Density:        d,
	}
}

// Density controls how long each continuation should run.
type Density string

const (
	DensityBrief    Density = "brief"
	DensityStandard Density = "standard"
	DensityRich     Density = "rich"
)

// WordRange returns the requested continuation length in words.
func (d Density) WordRange() (int, int) {
	switch d {
	case DensityBrief:
		return 150, 250
	case DensityRich:
		return 400, 600
	default:
		return 250, 400
	}
}

func (p Premise) genre() string {
	if g := strings.TrimSpace(p.Genre); g != "" {
		return g
	}
	return "interactive fiction"
}

func (p Premise) protagonist() string {
	if name := strings.TrimSpace(p.CharacterName); name != "" {
		return name
	}
	return "the protagonist"
}

// character describes the protagonist for the prompt, e.g. "a brave protagonist named Ada".
func (p Premise) character() string {
	name := strings.TrimSpace(p.CharacterName)
	trait := strings.ToLower(strings.TrimSpace(p.CharacterTrait))
	switch {
	case name != "" && trait != "":
		return fmt.Sprintf("a %s protagonist named %s", trait, name)
	case name != "":
		return "a protagonist named " + name
	case trait != "":
		return fmt.Sprintf("a %s protagonist", trait)
	default:
		return "an unnamed protagonist"
	}
}

func StarterPrompt(p Premise) string {
	var setup strings.Builder
	if g := strings.TrimSpace(p.Genre); g != "" {
		fmt.Fprintf(&setup, "\nGenre: %s", g)
	}
	if strings.TrimSpace(p.CharacterName) != "" || strings.TrimSpace(p.CharacterTrait) != "" {
		fmt.Fprintf(&setup, "\nProtagonist: %s", p.character())
	}

	return fmt.Sprintf(`You are the storyteller for an interactive fiction game.

Write exactly 3 distinct story openings.%s

Rules:
- Each opening is 2-4 sentences long
- Each opening ends on a situational hook that invites the reader to act
- Do NOT include choices, options, numbered lists or questions to the reader
- The three openings must differ in setting and situation

Format the response as a JSON array of 3 strings and nothing else.
Example format: ["Opening 1...", "Opening 2...", "Opening 3..."]`, setup.String())
}

func ChoicesPrompt(storyText string, p Premise, n int) string {
	return fmt.Sprintf(`You are the storyteller for a %s interactive fiction game featuring %s.

STORY SO FAR:
%s

Write exactly %d distinct actions that %s could take next.

Rules:
- Each action is 1-2 sentences, written as something the protagonist does
- Actions must follow from the latest events of the story
- Do NOT number or label the actions (no "1.", "Option A", bullets)
- Do NOT refer to any choices or options that may appear inside the story text

Format the response as a JSON array of %d strings and nothing else.
Example format: ["Action 1...", "Action 2...", "Action 3..."]`,
		p.genre(), p.character(), Clean(storyText), n, p.protagonist(), n)
}

func ContinuationPrompt(storyText, chosenAction string, p Premise) string {
	minWords, maxWords := p.Density.WordRange()
	return fmt.Sprintf(`Continue this %s story featuring %s.

STORY SO FAR:
%s

CHOSEN ACTION:
%s

Write the next part of the story (%d-%d words) that follows from this action.

Rules:
- Show the consequences of the chosen action
- Stay consistent with the events, tone and characters so far
- End at a natural narrative beat: a tense moment, a discovery or a decision point
- Do NOT list numbered choices or options
- Do NOT end with a question such as "What will you do?" or "What happens next?"
- Write prose only, no headings`,
		p.genre(), p.character(), Clean(storyText), chosenAction, minWords, maxWords)
}

func EndingPrompt(storyText string, p Premise) string {
	return fmt.Sprintf(`Bring this %s story featuring %s to its conclusion.

STORY SO FAR:
%s

Write the ending of the story (200-600 words).

The ending must:
1. Resolve the central tension of the story
2. Give %s a sense of closure
3. Reflect the tone of the %s genre
4. Finish on a final image or thought that lingers

Write prose only. Do not offer choices or ask the reader questions.`,
		p.genre(), p.character(), Clean(storyText), p.protagonist(), p.genre())
}

// RecapPrompt returns an empty prompt when no choices were made.
func RecapPrompt(choicesMade []string, p Premise) string {
	if len(choicesMade) == 0 {
		return ""
	}
	return fmt.Sprintf(`Write a 2-3 sentence recap of the journey %s took in this %s story.

The choices, in order, were: %s.

Refer to these choices as they happened. Write in the second person and the past tense.`,
		p.protagonist(), p.genre(), JoinReadable(choicesMade))
}

// JoinReadable joins items as an English list: "a", "a and b", "a, b, and c".
func JoinReadable(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		cleaned = append(cleaned, strings.TrimRight(strings.TrimSpace(item), "."))
	}
	switch len(cleaned) {
	case 0:
		return ""
	case 1:
		return cleaned[0]
	case 2:
		return cleaned[0] + " and " + cleaned[1]
	}
	return strings.Join(cleaned[:len(cleaned)-1], ", ") + ", and " + cleaned[len(cleaned)-1]
}
