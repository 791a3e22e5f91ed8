package narration

// Genres are the genres offered during setup.
var Genres = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Adventure",
	"Horror",
	"Romance",
	"Historical",
	"Comedy",
}

// FallbackStarters pad the opening list when a model returns too few.
var FallbackStarters = []string{
	"You find yourself standing at the edge of a mysterious forest with a map that seems to lead to a hidden treasure.",
	"The spaceship's alarm blares as you wake up from cryosleep, the rest of the crew is missing.",
	"The old mansion you just inherited contains a locked room that nobody has entered for over a century.",
}

// FillerChoice pads a choice list that came back short.
const FillerChoice = "Try something unexpected."

// Fit returns exactly n items: items beyond n are dropped and missing ones
// are taken from pad, repeating its last entry once it runs out.
func Fit(items []string, n int, pad ...string) []string {
	out := make([]string, 0, n)
	for _, item := range items {
		if len(out) == n {
			break
		}
		out = append(out, item)
	}
	for i := 0; len(out) < n; i++ {
		if len(pad) == 0 {
			out = append(out, FillerChoice)
			continue
		}
		out = append(out, pad[min(i, len(pad)-1)])
	}
	return out
}
