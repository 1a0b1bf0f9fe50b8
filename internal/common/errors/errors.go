// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy for the research
// pipeline and its user-facing surface.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors, recoverable by correcting the submission.
	ErrCodeEmptyQuery        ErrorCode = "EMPTY_QUERY"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"

	// A single evidence source failed; the cycle continues without it.
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"

	// The LLM call failed; no answer is rendered for this cycle.
	ErrCodeSynthesisFailed  ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeSynthesisTimeout ErrorCode = "SYNTHESIS_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Error Constructors
// ==========================

// NewEmptyQueryError creates a validation error for blank submissions.
func NewEmptyQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuery,
		Message:   "Query must not be empty",
		Details:   "submission contained only whitespace",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a validation error for malformed API bodies.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request body failed validation",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCredentialError creates the error shown when no API key is
// available at submit time. It always fires before any LLM network call.
func NewMissingCredentialError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCredential,
		Message:   "No LLM API key configured",
		Details:   "set RESEARCH_LLM_API_KEY or enter a key in the settings panel",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceUnavailableError creates the per-source degradation warning.
func NewSourceUnavailableError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceUnavailable,
		Message:   fmt.Sprintf("Source '%s' is unavailable", source),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError creates the terminal error for a failed LLM call.
func NewSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "LLM synthesis failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisTimeoutError creates the error for an LLM call that exceeded
// its configured deadline.
func NewSynthesisTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisTimeout,
		Message:   "LLM synthesis timed out",
		Details:   "call exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility Functions
// ==========================

// UserMessage maps an error code to the short message rendered in the UI.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrCodeEmptyQuery:
		return "Please enter a question before submitting."
	case ErrCodeInvalidRequest:
		return "The request could not be understood. Please try again."
	case ErrCodeMissingCredential:
		return "Please enter your LLM API key in the settings panel."
	case ErrCodeSynthesisTimeout:
		return "The model took too long to answer. Please try again."
	case ErrCodeSynthesisFailed:
		return "Sorry, something went wrong while synthesizing the answer."
	default:
		return "An unexpected error occurred."
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "REQUEST"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CREDENTIAL"):
		return "AUTH"
	case strings.Contains(codeStr, "SOURCE"):
		return "SOURCE"
	case strings.Contains(codeStr, "SYNTHESIS"):
		return "SYNTHESIS"
	default:
		return "OTHER"
	}
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
