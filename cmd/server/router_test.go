package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lmdah61/Japanese-Text-Server/internal/config"
	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
	"github.com/lmdah61/Japanese-Text-Server/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator satisfies generation.Generator without a network call.
type stubGenerator struct {
	result *domain.GenerationResult
	err    error
}

func (s *stubGenerator) Generate(
	ctx context.Context,
	req *domain.GenerationRequest,
) (*domain.GenerationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testApplication(t *testing.T) *application {
	t.Helper()

	result := &domain.GenerationResult{
		JapaneseText:       "天気がいいですね。",
		EnglishTranslation: "The weather is nice, isn't it?",
		Vocabulary: []domain.VocabularyItem{
			{Word: "天気", Reading: "てんき", Meaning: "weather"},
		},
		GrammarPoints: []domain.GrammarPoint{
			{Pattern: "〜ね", Explanation: "Sentence-final particle seeking agreement"},
		},
	}

	return &application{
		config: &config.Config{
			Server:    config.ServerConfig{Port: 8080, LogLevel: "error"},
			RateLimit: config.RateLimitConfig{PerMinute: 5, PerHour: 50},
		},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		generator:      &stubGenerator{result: result},
		rateLimitStore: ratelimit.NewMemoryStore(nil),
	}
}

func request(router http.Handler, method, path, remoteAddr string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func generateBody(t *testing.T, level, theme string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{"jlpt_level": level, "theme": theme})
	require.NoError(t, err)
	return body
}

func TestRouterGeneratePipeline(t *testing.T) {
	app := testApplication(t)
	router := app.setupRouter()

	rec := request(router, http.MethodPost, "/generate", "203.0.113.7:50000",
		generateBody(t, "N5", "weather"))
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.GenerationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "天気がいいですね。", result.JapaneseText)
	require.Len(t, result.Vocabulary, 1)
	assert.Equal(t, "天気", result.Vocabulary[0].Word)
}

func TestRouterRateLimitsGenerate(t *testing.T) {
	app := testApplication(t)
	router := app.setupRouter()

	body := generateBody(t, "N4", "travel")
	for i := 0; i < 5; i++ {
		rec := request(router, http.MethodPost, "/generate", "203.0.113.7:50000", body)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := request(router, http.MethodPost, "/generate", "203.0.113.7:50000", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Another client is not affected by the throttled one.
	rec = request(router, http.MethodPost, "/generate", "198.51.100.9:50000", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterInvalidInputThroughFullStack(t *testing.T) {
	app := testApplication(t)
	router := app.setupRouter()

	rec := request(router, http.MethodPost, "/generate", "203.0.113.7:50000",
		generateBody(t, "N9", "travel"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterHealthAlwaysAvailable(t *testing.T) {
	app := testApplication(t)
	router := app.setupRouter()

	// Exhaust the generate quota.
	body := generateBody(t, "N3", "food")
	for i := 0; i < 6; i++ {
		request(router, http.MethodPost, "/generate", "203.0.113.7:50000", body)
	}
	rec := request(router, http.MethodPost, "/generate", "203.0.113.7:50000", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health stays reachable for the throttled client.
	rec = request(router, http.MethodGet, "/health", "203.0.113.7:50000", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
}

func TestRouterRateLimitWindows(t *testing.T) {
	app := testApplication(t)
	windows := app.rateLimitWindows()

	require.Len(t, windows, 2)
	assert.Equal(t, uint64(5), windows[0].Limit)
	assert.Equal(t, time.Minute, windows[0].Duration)
	assert.Equal(t, uint64(50), windows[1].Limit)
	assert.Equal(t, time.Hour, windows[1].Duration)
}

func TestRouterCORSHeaders(t *testing.T) {
	app := testApplication(t)
	router := app.setupRouter()

	// Preflight for a cross-origin generate call.
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.RemoteAddr = "203.0.113.7:50000"
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	// The actual response carries the allow-origin header too.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.7:50000"
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
