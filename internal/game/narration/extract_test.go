package narration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["a","b","c"]`, []string{"a", "b", "c"}},
		{"json array with blanks", `["a", " ", " b "]`, []string{"a", "b"}},
		{"fenced json", "```json\n[\"Run\", \"Hide\"]\n```", []string{"Run", "Hide"}},
		{"array inside prose", "Here you go: [\n  \"Run\",\n  \"Hide\"\n]\nGood luck!", []string{"Run", "Hide"}},
		{"truncated array", `["Run away", "Hide`, []string{"Run away"}},
		{"quoted strings", `1. "Run away" 2. "Hide"`, []string{"Run away", "Hide"}},
		{"numbered lines", "1. Run\n2. Hide\n3. Fight", []string{"Run", "Hide", "Fight"}},
		{"parenthesised numbers", "1) Run\n2) Hide", []string{"Run", "Hide"}},
		{"bullets", "- Run\n* Hide\n• Fight", []string{"Run", "Hide", "Fight"}},
		{"plain lines", "Run\n\nHide\n", []string{"Run", "Hide"}},
		{"non string array", `[1, 2, 3]`, []string{"[1, 2, 3]"}},
		{"empty quotes", `""`, []string{`""`}},
		{"prose", "The forest is dark and full of secrets.", []string{"The forest is dark and full of secrets."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractList(tt.raw))
		})
	}
}

func TestExtractListBlankInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		got := ExtractList(raw)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtractListNeverEmptyForText(t *testing.T) {
	inputs := []string{"[", "]", "{\"a\": 1}", "[\"\"]", "-", "1.", "\"", "null", "[]"}
	for _, raw := range inputs {
		assert.NotEmpty(t, ExtractList(raw), "input %q", raw)
	}
}

func FuzzExtractList(f *testing.F) {
	for _, seed := range []string{
		"", "   ", `["a","b","c"]`, `["Run away", "Hide`, `1. "Run away" 2. "Hide"`,
		"1. Run\n2. Hide", "- Run\n* Hide", "[", "{\"a\": 1}", "null", "[]", `""`,
		"The forest is dark and full of secrets.",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		items := ExtractList(raw)
		if items == nil {
			t.Fatalf("nil list for %q", raw)
		}
		if blank := strings.TrimSpace(raw) == ""; blank != (len(items) == 0) {
			t.Fatalf("got %d items for %q", len(items), raw)
		}
		for _, item := range items {
			if item == "" || item != strings.TrimSpace(item) {
				t.Fatalf("untrimmed item %q for %q", item, raw)
			}
		}
	})
}
