package generation

import (
	"context"

	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
)

// Generator defines the interface for producing a structured study text
// from a validated generation request. This interface serves as the
// boundary between the application core and the external LLM service,
// following the hexagonal architecture pattern.
type Generator interface {
	// Generate produces a complete GenerationResult for the given request.
	// Implementations must return a result that passes CheckComplete, or
	// an error from this package's taxonomy (see errors.go).
	Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error)
}
