package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taleweaver/internal/game"
	"taleweaver/internal/observability"
)

const listConcurrency = 8

// FileStore keeps one indented JSON file per save in a directory.
type FileStore struct {
	baseDir string
	logger  *zap.Logger
	now     func() time.Time
}

type FileOption func(*FileStore)

func WithLogger(logger *zap.Logger) FileOption {
	return func(fs *FileStore) {
		fs.logger = logger.Named("storage")
	}
}

func WithClock(now func() time.Time) FileOption {
	return func(fs *FileStore) {
		fs.now = now
	}
}

func NewFileStore(baseDir string, opts ...FileOption) *FileStore {
	fs := &FileStore{
		baseDir: filepath.Clean(baseDir),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

func (fs *FileStore) Dir() string {
	return fs.baseDir
}

// sanitizePath maps a key to a file inside baseDir, rejecting traversal
func (fs *FileStore) sanitizePath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	fullPath := filepath.Join(fs.baseDir, key)
	if !strings.HasPrefix(fullPath, fs.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: outside base directory", ErrInvalidKey)
	}
	return fullPath, nil
}

func (fs *FileStore) Save(ctx context.Context, state *game.NarrativeState) (key string, err error) {
	defer func() {
		observability.StoriesSaved.WithLabelValues("file", resultLabel(err)).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := game.Encode(state)
	if err != nil {
		return "", err
	}

	key = Key(state.StoryID, fs.now())
	fullPath, err := fs.sanitizePath(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(fs.baseDir, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	fs.logger.Debug("story saved", zap.String("key", key), zap.String("story_id", state.StoryID))
	return key, nil
}

func (fs *FileStore) Load(ctx context.Context, key string) (*game.NarrativeState, error) {
	fullPath, err := fs.sanitizePath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	state, err := game.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return state, nil
}

// List parses every record in the directory concurrently. Records that
// cannot be read or decoded are logged and left out.
func (fs *FileStore) List(ctx context.Context) ([]game.Summary, error) {
	entries, err := os.ReadDir(fs.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return []game.Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}

	var (
		mu        sync.Mutex
		summaries = make([]game.Summary, 0, len(entries))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), keyExt) {
			continue
		}
		key := entry.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary, err := fs.summarize(key)
			if err != nil {
				fs.logger.Warn("skipping unreadable story", zap.String("key", key), zap.Error(err))
				return nil
			}
			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortNewestFirst(summaries)
	return summaries, nil
}

func (fs *FileStore) summarize(key string) (game.Summary, error) {
	fullPath := filepath.Join(fs.baseDir, key)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return game.Summary{}, err
	}
	state, err := game.Decode(data)
	if err != nil {
		return game.Summary{}, err
	}

	savedAt, ok := keyTime(key)
	if !ok {
		info, err := os.Stat(fullPath)
		if err != nil {
			return game.Summary{}, err
		}
		savedAt = info.ModTime()
	}
	return state.Summary(key, savedAt), nil
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
