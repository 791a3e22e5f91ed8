package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TALEWEAVER_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TALEWEAVER_LLM_API_KEY", "")
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithGeminiKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "gm-key", cfg.LLM.APIKey)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay)
	assert.Equal(t, 10, cfg.Story.MaxTurns)
	assert.Equal(t, 3, cfg.Story.ChoiceCount)
	assert.InDelta(t, 0.7, cfg.Story.Temperature, 1e-9)
	assert.InDelta(t, 0.8, cfg.Story.ContinuationTemperature, 1e-9)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "saved_stories", cfg.Storage.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadGoogleKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.LLM.APIKey)
}

func TestLoadYAMLThenEnvironment(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
llm:
  provider: openai
  retry_delay: 500ms
story:
  max_turns: 6
storage:
  driver: sqlite
  sqlite_path: stories.db
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TALEWEAVER_STORY_MAX_TURNS", "4")
	t.Setenv("TALEWEAVER_SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.RetryDelay)
	assert.Equal(t, 4, cfg.Story.MaxTurns)
	assert.Equal(t, 3, cfg.Story.ChoiceCount)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "stories.db", cfg.Storage.SQLitePath)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadXDGConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "taleweaver"), 0o755))
	writeConfig(t, filepath.Join(dir, "taleweaver"), "llm:\n  provider: ollama\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown provider", "llm:\n  provider: bard\n  api_key: k\n"},
		{"zero retries", "llm:\n  api_key: k\n  max_retries: 0\n"},
		{"unknown driver", "llm:\n  api_key: k\nstorage:\n  driver: redis\n"},
		{"tracing without keys", "llm:\n  api_key: k\ntracing:\n  enabled: true\n"},
		{"bad yaml", "llm: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeConfig(t, dir, tt.yaml)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadWithoutAPIKey(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.ErrorIs(t, cfg.LLM.RequireAPIKey(), ErrMissingAPIKey)

	cfg.LLM.APIKey = "k"
	assert.NoError(t, cfg.LLM.RequireAPIKey())

	ollama := LLMConfig{Provider: "ollama", Model: "llama3"}
	assert.NoError(t, ollama.RequireAPIKey())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}
