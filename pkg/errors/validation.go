package errors

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputRunes bounds the prompt text accepted by sources and the server.
const MaxInputRunes = 2000

// NormalizeInput trims surrounding whitespace from prompt text and validates
// what remains. Empty input is rejected; the caller should treat it as "no
// submission" rather than as a failure to report loudly.
//
// Validation rules:
//   - Not empty after trimming
//   - At most MaxInputRunes runes
//   - Valid UTF-8
//   - No control characters except line breaks and tabs
func NormalizeInput(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", New(ErrCodeInvalidInput, "input text cannot be empty")
	}
	if !utf8.ValidString(text) {
		return "", New(ErrCodeInvalidInput, "input text is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(text); n > MaxInputRunes {
		return "", New(ErrCodeInvalidInput, "input text too long (%d runes, max %d)", n, MaxInputRunes)
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return "", New(ErrCodeInvalidInput, "input text contains control characters")
		}
	}
	return text, nil
}

// ValidateID validates a trajectory or session identifier before it is used
// as a file name or database key.
//
// Validation rules:
//   - Not empty
//   - Maximum length of 64 characters
//   - Only ASCII letters, digits, '-' and '_'
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidPath, "id too long (max 64 characters)")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidPath, "id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateSpeed validates a playback speed multiplier: finite and > 0.
func ValidateSpeed(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return New(ErrCodeInvalidInput, "speed must be a positive number, got %v", m)
	}
	return nil
}
