package narration

import (
	"regexp"
	"strings"
)

var (
	optionLabel   = regexp.MustCompile(`(?i)^\s*[*_#>]*\s*(?:option|choice)\s+[a-z0-9]{1,3}\s*[*_]*\s*[:.)\-]`)
	optionHeading = regexp.MustCompile(`(?i)^\s*[*_#]*\s*(?:your\s+)?(?:choices|options)\s*[*_]*\s*:?\s*[*_]*\s*$`)
	numberedItem  = regexp.MustCompile(`^\s*\d+\.\s+\S`)
	bulletItem    = regexp.MustCompile(`^\s*[-*•+]\s+\S`)
	leadingMarker = regexp.MustCompile(`^(\s*)(?:\(\d+\)|\d+[.)])(?:\s+|$)`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)

	rhetoricalPrompts = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhat\s+will\s+you\s+do(?:\s+next)?\s*\?[*_]*`),
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhat\s+happens\s+next\s*\?[*_]*`),
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhat\s+do\s+you\s+do(?:\s+next)?\s*\?[*_]*`),
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhat\s+would\s+you\s+like\s+to\s+do(?:\s+next)?\s*\?[*_]*`),
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhat\s+will\s+you\s+choose\s*\?[*_]*`),
		regexp.MustCompile(`(?i)[ \t]*[*_]*\bwhich\s+path\s+will\s+you\s+(?:take|choose)\s*\?[*_]*`),
	}
)

// Clean strips choice lists and lead-in questions that models leak into
// narrative prose. Every pass only deletes, so iterating to a fixed point
// terminates and makes Clean idempotent.
func Clean(text string) string {
	for {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func cleanOnce(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	lines = dropBlocks(lines, func(line string) bool {
		return optionLabel.MatchString(line) || optionHeading.MatchString(line)
	})
	lines = dropBlocks(lines, numberedItem.MatchString)
	lines = dropBlocks(lines, bulletItem.MatchString)

	for i, line := range lines {
		lines[i] = leadingMarker.ReplaceAllString(line, "$1")
	}

	out := strings.Join(lines, "\n")
	for _, re := range rhetoricalPrompts {
		out = re.ReplaceAllString(out, "")
	}

	lines = strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	return strings.TrimSpace(out)
}

// dropBlocks removes every line that starts a block together with the lines
// that follow it up to the next blank line.
func dropBlocks(lines []string, starts func(string) bool) []string {
	kept := make([]string, 0, len(lines))
	inBlock := false
	for _, line := range lines {
		if starts(line) {
			inBlock = true
			continue
		}
		if strings.TrimSpace(line) == "" {
			inBlock = false
		}
		if !inBlock {
			kept = append(kept, line)
		}
	}
	return kept
}
