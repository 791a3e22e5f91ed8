package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"taleweaver/internal/logging"
	"taleweaver/internal/observability"
)

// Client wraps a Backend with bounded retries and a fixed fallback. It never
// returns an error: an exhausted generation degrades to FallbackText.
type Client struct {
	backend    Backend
	maxRetries int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	limiter    *rate.Limiter
	logger     *zap.Logger
	tracer     trace.Tracer
	recorder   CompletionRecorder
	now        func() time.Time
}

type Option func(*Client)

// WithRetry sets the total number of attempts and the pause between them.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithRateLimit paces backend calls; zero requestsPerMinute disables pacing.
func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger.Named("llm")
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

func WithCompletionLog(recorder CompletionRecorder) Option {
	return func(c *Client) {
		c.recorder = recorder
	}
}

func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:    backend,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		sleep:      sleepContext,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer("taleweaver/llm"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Backend() Backend {
	return c.backend
}

// Generate makes up to maxRetries attempts, sleeping retryDelay between
// them, and returns the first non-empty response or FallbackText.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) string {
	operation := OperationType(ctx)
	backend := c.backend.Name()

	ctx, span := c.tracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			observability.CreateGenAIAttributes(backend, c.backend.Model(), 0, 0, temperature)...,
		),
	)
	defer span.End()
	span.SetAttributes(
		attribute.String("game.operation_type", operation),
		attribute.String("langfuse.observation.type", "generation"),
		attribute.String("langfuse.observation.input", prompt),
	)

	start := c.now()
	defer func() {
		observability.GenerationDuration.WithLabelValues(backend).Observe(c.now().Sub(start).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				lastErr = err
				c.logger.Warn("retry wait interrupted",
					zap.String("backend", backend),
					zap.String("operation", operation),
					zap.Int("attempt", attempt),
					zap.Error(err))
				break
			}
		}

		text, err := c.attempt(ctx, prompt, temperature)
		if err == nil {
			observability.GenerationAttempts.WithLabelValues(backend, "success").Inc()
			span.SetAttributes(
				attribute.Int("gen_ai.attempts", attempt),
				attribute.String("langfuse.observation.output", text),
			)
			c.record(ctx, prompt, text, temperature, attempt, c.now().Sub(start))
			return text
		}

		lastErr = err
		observability.GenerationAttempts.WithLabelValues(backend, "error").Inc()
		span.AddEvent("attempt.failed", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("error", err.Error()),
		))
		c.logger.Warn("generation attempt failed",
			zap.String("backend", backend),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err))
	}

	observability.GenerationFallbacks.WithLabelValues(backend).Inc()
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "generation retries exhausted")
	c.logger.Error("generation failed, using fallback text",
		zap.String("backend", backend),
		zap.String("operation", operation),
		zap.Error(lastErr))
	return FallbackText
}

func (c *Client) attempt(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	text, err := c.backend.Generate(ctx, prompt, temperature)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) record(ctx context.Context, prompt, response string, temperature float64, attempts int, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.LogCompletion(ctx, logging.Completion{
		StoryID:   StoryID(ctx),
		Operation: OperationType(ctx),
		Prompt:    prompt,
		Response:  response,
		Metadata: logging.CompletionMetadata{
			Backend:      c.backend.Name(),
			Model:        c.backend.Model(),
			Temperature:  temperature,
			Attempts:     attempts,
			ResponseTime: elapsed,
		},
	})
	if err != nil {
		c.logger.Debug("failed to log completion", zap.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
