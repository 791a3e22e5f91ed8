package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain prose is untouched",
			in:   "It was a dark night.\n\nThe rain kept falling.",
			want: "It was a dark night.\n\nThe rain kept falling.",
		},
		{
			name: "labeled options",
			in:   "The hall is silent.\n\nOption A: Open the door\nOption B: Run away",
			want: "The hall is silent.",
		},
		{
			name: "bold choice labels with heading",
			in:   "Smoke rises.\n\n**Your choices:**\n**Choice 1:** Fight\n**Choice 2:** Flee",
			want: "Smoke rises.",
		},
		{
			name: "option block with continuation line keeps later paragraph",
			in:   "Snow.\n\nOption 1: Climb\nthe frozen wall\n\nThe wind howls.",
			want: "Snow.\n\nThe wind howls.",
		},
		{
			name: "numbered items",
			in:   "She waits.\n\n1. Enter the cave\n2. Climb the hill\n\nThe wind howls.",
			want: "She waits.\n\nThe wind howls.",
		},
		{
			name: "bullet items",
			in:   "Night falls.\n- Light a fire\n* Keep walking\n• Sleep",
			want: "Night falls.",
		},
		{
			name: "leftover leading markers",
			in:   "1) The first thing you notice is the smell.\n(2) Then the sound.",
			want: "The first thing you notice is the smell.\nThen the sound.",
		},
		{
			name: "rhetorical prompts anywhere",
			in:   "The door opens. What will you do?\n\nWHAT HAPPENS NEXT?\n\n*What do you do next?*",
			want: "The door opens.",
		},
		{
			name: "remaining variants",
			in:   "A. What would you like to do? B. What will you choose? C. Which path will you take?",
			want: "A. B. C.",
		},
		{
			name: "emphasis is not a bullet",
			in:   "*She whispered.*",
			want: "*She whispered.*",
		},
		{
			name: "windows line endings",
			in:   "Rain.\r\n\r\n1. Go\r\n2. Stay",
			want: "Rain.",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n\nHello.  \n\n",
			want: "Hello.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

var cleanSeeds = []string{
	"",
	"   ",
	"A quiet morning.",
	"What will you do? 1. Run",
	"Intro\n\n\n\nOption A: x\n- y\n3. z\nWhat happens next?",
	"1.\n2)\n(3)\n- \n*",
	"Text   \n\t\nMore text\n\n\n\nEnd? What do you do?",
	"Option A: a\n\nOption B: b\n\nClosing line. Which path will you choose?",
	"**Choice 1:** x\n\n1) What will you choose? - y",
	"Line one\r\nLine two\r\n\r\n\r\nLine three",
}

func TestCleanIsIdempotent(t *testing.T) {
	for _, in := range cleanSeeds {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func FuzzClean(f *testing.F) {
	for _, seed := range cleanSeeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean is not idempotent for %q: %q then %q", in, once, twice)
		}
	})
}
