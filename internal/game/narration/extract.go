package narration

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	bracketedList = regexp.MustCompile(`(?s)\[\s*".*"\s*\]`)
	quotedString  = regexp.MustCompile(`"([^"]*)"`)
	listMarker    = regexp.MustCompile(`(?m)^[ \t]*(?:\d+[.)][ \t]*|[-*•][ \t]+)`)
)

// ExtractList recovers a list of short strings from model output. It tries a
// JSON array, then a bracketed array embedded in prose, then every quoted
// string, then list-marker lines. It returns an empty list only for blank
// input.
func ExtractList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}

	if items, ok := parseArray(trimmed); ok {
		return items
	}
	if m := bracketedList.FindString(trimmed); m != "" {
		if items, ok := parseArray(m); ok {
			return items
		}
	}
	if items := quotedStrings(trimmed); len(items) > 0 {
		return items
	}
	if items := splitLines(trimmed); len(items) > 0 {
		return items
	}
	return []string{trimmed}
}

func parseArray(s string) ([]string, bool) {
	var values []string
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, false
	}
	items := compact(values)
	return items, len(items) > 0
}

func quotedStrings(s string) []string {
	matches := quotedString.FindAllStringSubmatch(s, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, m[1])
	}
	return compact(values)
}

// splitLines splits on list-marker lines, or on plain lines when the text
// carries no markers at all.
func splitLines(s string) []string {
	var parts []string
	if listMarker.MatchString(s) {
		parts = listMarker.Split(s, -1)
	} else {
		parts = strings.Split(s, "\n")
	}
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return compact(parts)
}

func compact(values []string) []string {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return items
}
