package game

type SegmentType string

const (
	SegmentBeginning    SegmentType = "beginning"
	SegmentChoice       SegmentType = "choice"
	SegmentCustomChoice SegmentType = "custom_choice"
	SegmentStory        SegmentType = "story"
	SegmentEnding       SegmentType = "ending"
)

type Segment struct {
	Type SegmentType `json:"type" validate:"oneof=beginning choice custom_choice story ending"`
	Text string      `json:"text"`
}

// Path is the append-only audit trail of how the narrative was built.
type Path []Segment

func (s *NarrativeState) AddBeginning(text string) {
	s.add(SegmentBeginning, text)
}

func (s *NarrativeState) AddChoice(choice string) {
	s.ChoicesMade = append(s.ChoicesMade, choice)
	s.add(SegmentChoice, choice)
}

func (s *NarrativeState) AddCustomChoice(action string) {
	s.ChoicesMade = append(s.ChoicesMade, action)
	s.add(SegmentCustomChoice, action)
}

func (s *NarrativeState) AddStory(text string) {
	s.add(SegmentStory, text)
}

func (s *NarrativeState) AddEnding(text string) {
	s.add(SegmentEnding, text)
}

func (s *NarrativeState) add(t SegmentType, text string) {
	s.PathTaken = append(s.PathTaken, Segment{Type: t, Text: text})
}

func (p Path) Entries() Path {
	result := make(Path, len(p))
	copy(result, p)
	return result
}

// Last returns the most recent segment of the given type.
func (p Path) Last(t SegmentType) (Segment, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Type == t {
			return p[i], true
		}
	}
	return Segment{}, false
}

func (p Path) Count(t SegmentType) int {
	n := 0
	for _, seg := range p {
		if seg.Type == t {
			n++
		}
	}
	return n
}
