package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TALEWEAVER"

// ErrMissingAPIKey is returned when a hosted provider is configured
// without credentials.
var ErrMissingAPIKey = errors.New("missing llm api key")

type Config struct {
	LLM     LLMConfig     `yaml:"llm" envconfig:"LLM"`
	Story   StoryConfig   `yaml:"story" envconfig:"STORY"`
	Storage StorageConfig `yaml:"storage" envconfig:"STORAGE"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider" envconfig:"PROVIDER" validate:"required,oneof=gemini openai ollama"`
	Model             string        `yaml:"model" envconfig:"MODEL" validate:"required"`
	APIKey            string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	MaxRetries        int           `yaml:"max_retries" envconfig:"MAX_RETRIES" validate:"min=1,max=10"`
	RetryDelay        time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"min=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE" validate:"min=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"min=0"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"min=0"`
}

type StoryConfig struct {
	MaxTurns                int     `yaml:"max_turns" envconfig:"MAX_TURNS" validate:"min=1"`
	ChoiceCount             int     `yaml:"choice_count" envconfig:"CHOICE_COUNT" validate:"min=1,max=9"`
	Temperature             float64 `yaml:"temperature" envconfig:"TEMPERATURE" validate:"min=0,max=2"`
	ContinuationTemperature float64 `yaml:"continuation_temperature" envconfig:"CONTINUATION_TEMPERATURE" validate:"min=0,max=2"`
	Density                 string  `yaml:"density" envconfig:"DENSITY" validate:"omitempty,oneof=brief standard rich"`
}

type StorageConfig struct {
	Driver          string `yaml:"driver" envconfig:"DRIVER" validate:"required,oneof=file sqlite"`
	Dir             string `yaml:"dir" envconfig:"DIR" validate:"required"`
	SQLitePath      string `yaml:"sqlite_path" envconfig:"SQLITE_PATH" validate:"required_if=Driver sqlite"`
	CompletionsPath string `yaml:"completions_path" envconfig:"COMPLETIONS_PATH"`
	LogCompletions  bool   `yaml:"log_completions" envconfig:"LOG_COMPLETIONS"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"min=0"`
}

type LogConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL"`
	Encoding   string `yaml:"encoding" envconfig:"ENCODING" validate:"omitempty,oneof=json console"`
	OutputPath string `yaml:"output_path" envconfig:"OUTPUT_PATH"`
}

type TracingConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	LangfuseHost string `yaml:"langfuse_host" envconfig:"LANGFUSE_HOST" validate:"required_if=Enabled true"`
	PublicKey    string `yaml:"public_key" envconfig:"PUBLIC_KEY" validate:"required_if=Enabled true"`
	SecretKey    string `yaml:"secret_key" envconfig:"SECRET_KEY" validate:"required_if=Enabled true"`
	Environment  string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

var defaultModels = map[string]string{
	"gemini": "gemini-2.0-flash",
	"openai": "gpt-4o-mini",
	"ollama": "llama3",
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:   "gemini",
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Burst:      1,
			Timeout:    60 * time.Second,
		},
		Story: StoryConfig{
			MaxTurns:                10,
			ChoiceCount:             3,
			Temperature:             0.7,
			ContinuationTemperature: 0.8,
			Density:                 "standard",
		},
		Storage: StorageConfig{
			Driver:          "file",
			Dir:             "saved_stories",
			SQLitePath:      "taleweaver.db",
			CompletionsPath: "completions.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Tracing: TracingConfig{
			LangfuseHost: "https://cloud.langfuse.com",
			Environment:  "development",
		},
	}
}

// Load layers defaults, the YAML file at path (or the resolved default
// location), .env and TALEWEAVER_* variables, then validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := resolvePath(path)
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if path != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyProviderDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		case "openai":
			c.LLM.APIKey = firstEnv("OPENAI_API_KEY")
		}
	}
	c.Storage.Dir = expandTilde(c.Storage.Dir)
	c.Storage.SQLitePath = expandTilde(c.Storage.SQLitePath)
	c.Storage.CompletionsPath = expandTilde(c.Storage.CompletionsPath)
}

// RequireAPIKey reports whether the provider has the credentials it needs.
// Load does not check this, so commands that never call a model run
// without a key.
func (c LLMConfig) RequireAPIKey() error {
	if c.Provider == "ollama" || c.APIKey != "" {
		return nil
	}
	hint := "TALEWEAVER_LLM_API_KEY"
	switch c.Provider {
	case "gemini":
		hint = "GEMINI_API_KEY or GOOGLE_API_KEY"
	case "openai":
		hint = "OPENAI_API_KEY"
	}
	return fmt.Errorf("%w for %s: set llm.api_key or %s", ErrMissingAPIKey, c.Provider, hint)
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func resolvePath(path string) string {
	if path != "" {
		return expandTilde(path)
	}
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		return expandTilde(path)
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "taleweaver", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taleweaver", "config.yaml")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
