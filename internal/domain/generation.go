package domain

import (
	"fmt"
	"strings"
)

// Level represents a JLPT proficiency tier.
type Level string

// The five JLPT tiers, from beginner to advanced. The comparison is
// case-sensitive: "n5" is not a valid level.
const (
	LevelN5 Level = "N5"
	LevelN4 Level = "N4"
	LevelN3 Level = "N3"
	LevelN2 Level = "N2"
	LevelN1 Level = "N1"
)

// levelDescriptions characterize each tier for prompt construction.
var levelDescriptions = map[Level]string{
	LevelN5: "Basic Japanese knowledge. ~800 basic vocabulary words, basic grammar patterns.",
	LevelN4: "Basic Japanese ability. ~1,500 vocabulary words, basic grammar patterns.",
	LevelN3: "Intermediate Japanese ability. ~3,000 vocabulary words, intermediate grammar.",
	LevelN2: "Pre-advanced Japanese ability. ~6,000 vocabulary words, advanced grammar.",
	LevelN1: "Advanced Japanese ability. ~10,000 vocabulary words, complex grammar patterns.",
}

// Levels returns the valid tiers in descending order of accessibility.
func Levels() []Level {
	return []Level{LevelN5, LevelN4, LevelN3, LevelN2, LevelN1}
}

// ParseLevel validates a raw level string against the enumerated set.
func ParseLevel(raw string) (Level, error) {
	level := Level(raw)
	if _, ok := levelDescriptions[level]; !ok {
		return "", NewValidationError("jlpt_level",
			"must be one of: N5, N4, N3, N2, N1", ErrInvalidLevel)
	}
	return level, nil
}

// Description returns the prompt-facing characterization of the level.
// Empty for levels outside the enumerated set.
func (l Level) Description() string {
	return levelDescriptions[l]
}

// GenerationRequest is a validated request for a generated study text.
type GenerationRequest struct {
	Level Level
	Theme string
}

// NewGenerationRequest validates the raw input fields and returns a
// GenerationRequest, or a ValidationError naming the offending field.
// The theme is trimmed of surrounding whitespace.
func NewGenerationRequest(rawLevel, rawTheme string) (*GenerationRequest, error) {
	level, err := ParseLevel(rawLevel)
	if err != nil {
		return nil, err
	}

	theme := strings.TrimSpace(rawTheme)
	if theme == "" {
		return nil, NewValidationError("theme", "is required and cannot be blank", ErrEmptyTheme)
	}

	return &GenerationRequest{
		Level: level,
		Theme: theme,
	}, nil
}

// VocabularyItem is a single vocabulary entry from the generated text.
type VocabularyItem struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
	Meaning string `json:"meaning"`
}

// GrammarPoint is a grammar pattern used in the generated text together
// with an English explanation.
type GrammarPoint struct {
	Pattern     string `json:"pattern"`
	Explanation string `json:"explanation"`
}

// GenerationResult is the structured study artifact produced from the
// model output. The JSON tags define the wire format returned to clients
// and expected from the model.
type GenerationResult struct {
	JapaneseText       string           `json:"japanese_text"`
	EnglishTranslation string           `json:"english_translation"`
	Vocabulary         []VocabularyItem `json:"vocabulary"`
	GrammarPoints      []GrammarPoint   `json:"grammar_points"`
}

// CheckComplete verifies that all four fields are present and non-empty
// and that every vocabulary and grammar entry carries all of its subfields.
// A result that fails this check must not be returned to clients.
func (r *GenerationResult) CheckComplete() error {
	if r.JapaneseText == "" {
		return NewValidationError("japanese_text", "is missing or empty", ErrIncompleteResult)
	}
	if r.EnglishTranslation == "" {
		return NewValidationError("english_translation", "is missing or empty", ErrIncompleteResult)
	}
	if len(r.Vocabulary) == 0 {
		return NewValidationError("vocabulary", "is missing or empty", ErrIncompleteResult)
	}
	for i, item := range r.Vocabulary {
		if item.Word == "" || item.Reading == "" || item.Meaning == "" {
			return NewValidationError("vocabulary",
				fmt.Sprintf("entry %d is missing word, reading, or meaning", i), ErrIncompleteResult)
		}
	}
	if len(r.GrammarPoints) == 0 {
		return NewValidationError("grammar_points", "is missing or empty", ErrIncompleteResult)
	}
	for i, point := range r.GrammarPoints {
		if point.Pattern == "" || point.Explanation == "" {
			return NewValidationError("grammar_points",
				fmt.Sprintf("entry %d is missing pattern or explanation", i), ErrIncompleteResult)
		}
	}
	return nil
}
