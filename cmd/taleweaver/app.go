package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"taleweaver/internal/config"
	"taleweaver/internal/game/director"
	"taleweaver/internal/game/narration"
	"taleweaver/internal/llm"
	"taleweaver/internal/logging"
	"taleweaver/internal/observability"
	"taleweaver/internal/storage"
)

const (
	serviceName = "taleweaver"
	tuiLogFile  = "taleweaver.log"
)

var version = "dev"

// app holds the collaborators shared by every command.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	tracing     *observability.TracerProvider
	client      *llm.Client
	store       storage.Store
	completions *logging.CompletionLogger
	closers     []io.Closer
}

// createApp loads configuration and opens storage. The terminal UI owns
// stdout, so when tui is set logs go to a file unless a path is configured.
func createApp(ctx context.Context, configPath string, tui bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logPath := cfg.Log.OutputPath
	if tui && logPath == "" {
		logPath = tuiLogFile
	}
	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: logPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	a.tracing, err = observability.InitTracing(ctx, observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		Enabled:        cfg.Tracing.Enabled,
		LangfuseHost:   cfg.Tracing.LangfuseHost,
		PublicKey:      cfg.Tracing.PublicKey,
		SecretKey:      cfg.Tracing.SecretKey,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else if a.tracing.IsEnabled() {
		logger.Info("tracing enabled", zap.String("host", cfg.Tracing.LangfuseHost))
	}

	if a.store, err = a.openStore(); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Storage.LogCompletions {
		a.completions, err = logging.NewCompletionLogger(cfg.Storage.CompletionsPath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize completion logger: %w", err)
		}
		a.closers = append(a.closers, a.completions)
	}

	return a, nil
}

func (a *app) openStore() (storage.Store, error) {
	switch a.cfg.Storage.Driver {
	case "sqlite":
		s, err := storage.NewSQLiteStore(a.cfg.Storage.SQLitePath, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open story database: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return storage.NewFileStore(a.cfg.Storage.Dir, storage.WithLogger(a.logger)), nil
	}
}

// generator connects the configured backend. Commands that only read saved
// stories never call it, so they work without credentials for a backend.
func (a *app) generator(ctx context.Context) (*llm.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	backend, err := llm.NewBackend(ctx, a.cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", a.cfg.LLM.Provider, err)
	}
	if c, ok := backend.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	opts := []llm.Option{
		llm.WithRetry(a.cfg.LLM.MaxRetries, a.cfg.LLM.RetryDelay),
		llm.WithRateLimit(a.cfg.LLM.RequestsPerMinute, a.cfg.LLM.Burst),
		llm.WithLogger(a.logger),
		llm.WithTracer(a.tracing.Tracer("taleweaver/llm")),
	}
	if a.completions != nil {
		opts = append(opts, llm.WithCompletionLog(a.completions))
	}
	a.client = llm.NewClient(backend, opts...)

	a.logger.Info("generation backend ready",
		zap.String("backend", backend.Name()),
		zap.String("model", backend.Model()))
	return a.client, nil
}

func (a *app) newDirector(gen director.Generator) *director.Director {
	story := a.cfg.Story
	return director.New(gen, a.store,
		director.WithMaxTurns(story.MaxTurns),
		director.WithChoiceCount(story.ChoiceCount),
		director.WithTemperatures(story.Temperature, story.ContinuationTemperature),
		director.WithDensity(narration.Density(story.Density)),
		director.WithLogger(a.logger),
		director.WithTracer(a.tracing.Tracer("taleweaver/story")),
	)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(context.Background()))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
