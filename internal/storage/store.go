package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"taleweaver/internal/game"
)

var (
	ErrNotFound   = errors.New("story not found")
	ErrInvalidKey = errors.New("invalid story key")
)

const (
	keyExt        = ".json"
	keyTimeLayout = "20060102_150405"
)

// Store persists whole NarrativeState records under generated keys.
type Store interface {
	Save(ctx context.Context, state *game.NarrativeState) (string, error)
	Load(ctx context.Context, key string) (*game.NarrativeState, error)
	List(ctx context.Context) ([]game.Summary, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Key returns the record name for a story saved at t:
// {storyId}_{YYYYmmdd_HHMMSS}.json.
func Key(storyID string, t time.Time) string {
	id := unsafeKeyChars.ReplaceAllString(storyID, "-")
	if id == "" {
		id = "story"
	}
	return fmt.Sprintf("%s_%s%s", id, t.Format(keyTimeLayout), keyExt)
}

// keyTime recovers the save time encoded in a key.
func keyTime(key string) (time.Time, bool) {
	name := strings.TrimSuffix(key, keyExt)
	if len(name) < len(keyTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(keyTimeLayout, name[len(name)-len(keyTimeLayout):], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validateKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.Contains(key, "..") ||
		strings.ContainsAny(key, `/\`) || !strings.HasSuffix(key, keyExt) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func sortNewestFirst(summaries []game.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].Date.Equal(summaries[j].Date) {
			return summaries[i].Date.After(summaries[j].Date)
		}
		return summaries[i].Key > summaries[j].Key
	})
}
