// Package redact provides utilities for redacting sensitive information from
// strings before they are logged. For this service that means the Gemini API
// key, upstream hostnames, and local file paths that can ride along inside
// transport error messages. Raw model output is never passed through logging
// at all; redaction here is the second line of defense.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedHostPlaceholder = "[REDACTED_HOST]"
)

// Precompiled regex patterns
var (
	// API keys and tokens embedded in error strings or URLs
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`)

	// Hostnames with optional ports, as seen in dial/timeout errors
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	// File paths
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	patterns = []*regexp.Regexp{
		googleKeyRegex, apiKeyRegex, unixPathRegex, hostPortRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		googleKeyRegex: RedactedKeyPlaceholder,
		apiKeyRegex:    RedactedKeyPlaceholder,
		unixPathRegex:  RedactedPathPlaceholder,
		hostPortRegex:  RedactedHostPlaceholder,
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
