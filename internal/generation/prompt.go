package generation

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
)

// promptTemplateText instructs the model to produce a short study text for
// the requested level and theme and to answer with the exact JSON shape the
// normalizer expects. The shape mirrors domain.GenerationResult's JSON tags.
const promptTemplateText = `Generate a short Japanese text (100-150 words) about the theme: {{.Theme}}.

The text should be appropriate for JLPT level {{.Level}} students.
{{.LevelDescription}}

Format your response as a JSON object with the following structure:
{"japanese_text": "[Japanese text here]",
 "english_translation": "[English translation here]",
 "vocabulary": [{"word": "[Japanese word]", "reading": "[reading in hiragana]", "meaning": "[English meaning]"}],
 "grammar_points": [{"pattern": "[grammar pattern]", "explanation": "[explanation in English]"}]
}

Ensure the text uses vocabulary and grammar appropriate for JLPT {{.Level}} level.
Respond with the JSON object only.`

var promptTemplate = template.Must(template.New("study-text").Parse(promptTemplateText))

// promptData carries the fields rendered into the prompt template.
type promptData struct {
	Level            domain.Level
	LevelDescription string
	Theme            string
}

// BuildPrompt renders the prompt for the given request. It is a pure
// function: the same request always yields the same prompt text.
func BuildPrompt(req *domain.GenerationRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request cannot be nil", ErrGenerationFailed)
	}

	data := promptData{
		Level:            req.Level,
		LevelDescription: req.Level.Description(),
		Theme:            req.Theme,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
