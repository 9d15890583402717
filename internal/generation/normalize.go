package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
)

// Normalize parses raw model output into a GenerationResult. The model may
// wrap the JSON payload in prose or markdown code fences; Normalize locates
// the payload substring before parsing. It fails with ErrMalformedResponse
// if no payload can be found, if the payload is not valid JSON, or if the
// result is missing any required field. No defaults are substituted: a
// malformed field is a hard failure.
func Normalize(raw string) (*domain.GenerationResult, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return nil, err
	}

	var result domain.GenerationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := result.CheckComplete(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &result, nil
}

// extractPayload locates the JSON object inside the raw model output.
// Preference order: a ```json fenced block, then the outermost brace pair.
func extractPayload(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty response body", ErrMalformedResponse)
	}

	if fenced, ok := extractFencedBlock(text); ok {
		text = fenced
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object found in response", ErrMalformedResponse)
	}

	return text[start : end+1], nil
}

// extractFencedBlock returns the contents of the first ```json (or bare ```)
// code fence, if the text contains a complete one.
func extractFencedBlock(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		_, after, found := strings.Cut(text, marker)
		if !found {
			continue
		}
		block, _, closed := strings.Cut(after, "```")
		if !closed {
			continue
		}
		return strings.TrimSpace(block), true
	}
	return "", false
}
