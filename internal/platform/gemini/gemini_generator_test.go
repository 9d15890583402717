package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/lmdah61/Japanese-Text-Server/internal/config"
	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
	"github.com/lmdah61/Japanese-Text-Server/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-api-key",
		ModelName:         "gemini-2.0-flash",
		TimeoutSeconds:    5,
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

// testGenerator builds a Generator with the network call stubbed out.
// The real constructor is exercised separately; the retry and
// normalization logic does not need a live client.
func testGenerator(t *testing.T, call func(ctx context.Context, prompt string) (string, error)) *Generator {
	t.Helper()
	g := &Generator{
		logger: testLogger(),
		config: testLLMConfig(),
		model:  "gemini-2.0-flash",
	}
	g.call = call
	return g
}

const stubPayload = `{
	"japanese_text": "天気がいいですね。",
	"english_translation": "The weather is nice, isn't it?",
	"vocabulary": [{"word": "天気", "reading": "てんき", "meaning": "weather"}],
	"grammar_points": [{"pattern": "〜ね", "explanation": "Sentence-final particle seeking agreement"}]
}`

func TestNewGeneratorValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewGenerator(ctx, nil, testLLMConfig())
		require.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := testLLMConfig()
		cfg.GeminiAPIKey = ""
		_, err := NewGenerator(ctx, testLogger(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		cfg := testLLMConfig()
		cfg.ModelName = ""
		_, err := NewGenerator(ctx, testLogger(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestGenerateSuccess(t *testing.T) {
	var capturedPrompt string
	g := testGenerator(t, func(ctx context.Context, prompt string) (string, error) {
		capturedPrompt = prompt
		return "```json\n" + stubPayload + "\n```", nil
	})

	req := &domain.GenerationRequest{Level: domain.LevelN5, Theme: "weather"}
	result, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "天気がいいですね。", result.JapaneseText)
	assert.Contains(t, capturedPrompt, "weather")
	assert.Contains(t, capturedPrompt, "JLPT level N5")
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	g := testGenerator(t, nil)
	g.config.RetryDelaySeconds = 1

	calls := 0
	g.call = func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("%w: connection reset", generation.ErrTransientFailure)
		}
		return stubPayload, nil
	}

	req := &domain.GenerationRequest{Level: domain.LevelN3, Theme: "work"}
	result, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotNil(t, result)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	g := testGenerator(t, nil)
	g.config.MaxRetries = 1
	g.config.RetryDelaySeconds = 1

	calls := 0
	g.call = func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", fmt.Errorf("%w: connection reset", generation.ErrTransientFailure)
	}

	req := &domain.GenerationRequest{Level: domain.LevelN2, Theme: "food"}
	_, err := g.Generate(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrUpstreamFailure)
	assert.Equal(t, 2, calls)
}

func TestGenerateDoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"content blocked", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)},
		{"empty body", fmt.Errorf("%w: empty response body", generation.ErrUpstreamFailure)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			g := testGenerator(t, func(ctx context.Context, prompt string) (string, error) {
				calls++
				return "", tc.err
			})

			req := &domain.GenerationRequest{Level: domain.LevelN4, Theme: "school"}
			_, err := g.Generate(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.err) || errors.Is(err, generation.ErrUpstreamFailure) ||
				errors.Is(err, generation.ErrContentBlocked))
			assert.Equal(t, 1, calls, "permanent errors must not be retried")
		})
	}
}

func TestGenerateMalformedOutputIsNotRetried(t *testing.T) {
	calls := 0
	g := testGenerator(t, func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "I cannot produce JSON today.", nil
	})

	req := &domain.GenerationRequest{Level: domain.LevelN1, Theme: "politics"}
	_, err := g.Generate(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrMalformedResponse)
	assert.Equal(t, 1, calls)
}
