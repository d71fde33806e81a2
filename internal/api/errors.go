package api

import (
	"fmt"
	"strings"
)

// Issue is one field/rule pair from a validation_error response.
type Issue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is a server-side validation failure mapped to per-field
// messages.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Rule))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// APIError is a business failure reported by the platform (status other than
// "success"). Known constraint-violation messages are translated into
// friendlier text; anything else is surfaced verbatim.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if msg := friendly(e.Message); msg != "" {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (status %q)", e.Status)
}

// friendly maps known duplicate-key substrings to human-readable messages.
func friendly(msg string) string {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "duplicate") && !strings.Contains(lower, "already exists") {
		return ""
	}
	switch {
	case strings.Contains(lower, "email"):
		return "an account with this email already exists"
	case strings.Contains(lower, "mobile"):
		return "an account with this mobile number already exists"
	}
	return ""
}
