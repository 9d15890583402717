// Package gemini implements the generation.Generator interface on top of
// Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/lmdah61/Japanese-Text-Server/internal/config"
	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
	"github.com/lmdah61/Japanese-Text-Server/internal/generation"
	"github.com/lmdah61/Japanese-Text-Server/internal/redact"
)

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string

	// call performs a single model invocation. Indirected so tests can
	// substitute the network call.
	call func(ctx context.Context, prompt string) (string, error)
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed Generator from the provided
// configuration. It validates the configuration and initializes the API
// client; no network call is made until Generate.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	g := &Generator{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}
	g.call = g.callModel

	return g, nil
}

// Generate builds the prompt for the request, calls the Gemini API with
// retry for transient failures, and normalizes the model output into a
// complete GenerationResult.
func (g *Generator) Generate(
	ctx context.Context,
	req *domain.GenerationRequest,
) (*domain.GenerationResult, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := generation.Normalize(raw)
	if err != nil {
		g.logger.WarnContext(ctx, "model output failed normalization",
			"error", redact.Error(err),
			"response_length", len(raw))
		return nil, err
	}

	return result, nil
}

// callWithRetry invokes the model with exponential backoff and jitter for
// transient errors. Permanent errors (upstream rejected the content or
// returned an unusable body) are returned immediately without retrying.
// Each attempt runs under its own timeout derived from the configuration.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	timeout := time.Duration(g.config.TimeoutSeconds) * time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "calling Gemini API",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"model", g.model)

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := g.call(callCtx, prompt)
		cancel()

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum,
				"response_length", len(raw))
			return raw, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", redact.Error(err))

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrUpstreamFailure) {
			return "", err
		}

		lastErr = err
		if attempt >= maxRetries {
			break
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrUpstreamFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrUpstreamFailure, maxRetries, lastErr)
}

// callModel performs a single Gemini API invocation and returns the raw
// response text.
func (g *Generator) callModel(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		// Transport-level failures are assumed transient; the retry loop
		// decides whether another attempt is allowed.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrUpstreamFailure)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response body", generation.ErrUpstreamFailure)
	}

	return text, nil
}
