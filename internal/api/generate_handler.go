// Package api contains the HTTP handlers, request/response models, and
// error mapping for the text generation service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/lmdah61/Japanese-Text-Server/internal/api/shared"
	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
	"github.com/lmdah61/Japanese-Text-Server/internal/generation"
	"github.com/lmdah61/Japanese-Text-Server/internal/platform/logger"
)

// GenerateRequest represents the request body for generating a study text.
// The struct tags document the wire contract; cross-field rules (trimmed
// theme, case-sensitive level set) are enforced by the domain constructor.
type GenerateRequest struct {
	JLPTLevel string `json:"jlpt_level" validate:"required"`
	Theme     string `json:"theme"      validate:"required"`
}

// GenerateHandler handles text generation HTTP requests
type GenerateHandler struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(generator generation.Generator, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		logger:    logger,
	}
}

// Generate handles POST /generate requests. Rate limiting has already run
// in the middleware chain; from here the pipeline is validate, prompt,
// generate, normalize, respond. The generator is never invoked for a
// request that fails validation.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	genReq, err := domain.NewGenerationRequest(req.JLPTLevel, req.Theme)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.InfoContext(r.Context(), "generating study text",
		"jlpt_level", genReq.Level,
		"theme_length", len(genReq.Theme))

	result, err := h.generator.Generate(r.Context(), genReq)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// HealthResponse is the body returned by the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /health requests. It has no side effects and always
// reports ok, independent of rate-limit or upstream state.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
