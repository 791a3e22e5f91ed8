package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"taleweaver/internal/game"
	"taleweaver/internal/observability"
)

// SQLiteStore keeps saves in a single table, one row per key.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SQLiteStore{db: db, logger: logger.Named("storage"), now: time.Now}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stories (
		key TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		saved_at DATETIME NOT NULL,
		genre TEXT NOT NULL,
		character_name TEXT NOT NULL,
		choice_count INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		record TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stories_saved_at ON stories(saved_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, state *game.NarrativeState) (key string, err error) {
	defer func() {
		observability.StoriesSaved.WithLabelValues("sqlite", resultLabel(err)).Inc()
	}()

	data, err := game.Encode(state)
	if err != nil {
		return "", err
	}

	savedAt := s.now()
	key = Key(state.StoryID, savedAt)
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO stories (key, story_id, saved_at, genre, character_name, choice_count, word_count, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, key, state.StoryID, savedAt.UTC(), state.Genre, state.CharacterName,
		len(state.ChoicesMade), state.WordCount, string(data))
	if err != nil {
		return "", fmt.Errorf("saving story: %w", err)
	}

	s.logger.Debug("story saved", zap.String("key", key), zap.String("story_id", state.StoryID))
	return key, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*game.NarrativeState, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM stories WHERE key = ?`, key).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading story: %w", err)
	}

	state, err := game.Decode([]byte(record))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return state, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]game.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, story_id, saved_at, genre, character_name, choice_count, word_count
		FROM stories
		ORDER BY saved_at DESC, key DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	summaries := []game.Summary{}
	for rows.Next() {
		var sum game.Summary
		if err := rows.Scan(&sum.Key, &sum.StoryID, &sum.Date, &sum.Genre,
			&sum.Character, &sum.ChoiceCount, &sum.WordCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
