package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Completion is one successful generation as seen by the retry client.
type Completion struct {
	StoryID   string
	Operation string
	Prompt    string
	Response  string
	Metadata  CompletionMetadata
}

type CompletionMetadata struct {
	Backend      string        `json:"backend"`
	Model        string        `json:"model"`
	Temperature  float64       `json:"temperature"`
	Attempts     int           `json:"attempts"`
	ResponseTime time.Duration `json:"response_time_ms"`
}

type CompletionLog struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	StoryID   string    `json:"story_id"`
	Operation string    `json:"operation"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Metadata  string    `json:"metadata"`
	Rating    *int      `json:"rating,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

type CompletionLogger struct {
	db *sql.DB
}

func NewCompletionLogger(path string) (*CompletionLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := &CompletionLogger{db: db}
	if err := logger.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return logger, nil
}

func (cl *CompletionLogger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		story_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		metadata TEXT NOT NULL,
		rating INTEGER,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_completions_timestamp ON completions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_completions_story ON completions(story_id);
	`

	_, err := cl.db.Exec(schema)
	return err
}

func (cl *CompletionLogger) LogCompletion(ctx context.Context, c Completion) error {
	metadataJson, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = cl.db.ExecContext(ctx, `
		INSERT INTO completions (story_id, operation, prompt, response, metadata)
		VALUES (?, ?, ?, ?, ?)
	`, c.StoryID, c.Operation, c.Prompt, c.Response, string(metadataJson))

	return err
}

func (cl *CompletionLogger) RecentCompletions(ctx context.Context, limit int) ([]CompletionLog, error) {
	rows, err := cl.db.QueryContext(ctx, `
		SELECT id, timestamp, story_id, operation, prompt, response, metadata, rating, notes
		FROM completions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []CompletionLog
	for rows.Next() {
		var c CompletionLog
		err := rows.Scan(&c.ID, &c.Timestamp, &c.StoryID, &c.Operation,
			&c.Prompt, &c.Response, &c.Metadata, &c.Rating, &c.Notes)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// RateCompletion stores a 1-5 rating and optional notes for one completion.
func (cl *CompletionLogger) RateCompletion(ctx context.Context, id int, rating int, notes string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	res, err := cl.db.ExecContext(ctx, `
		UPDATE completions
		SET rating = ?, notes = ?
		WHERE id = ?
	`, rating, notesPtr, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("completion %d not found", id)
	}
	return nil
}

func (cl *CompletionLogger) Close() error {
	return cl.db.Close()
}
