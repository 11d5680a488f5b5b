// Package errors provides the error handling system for ollamanode.
// It includes structured error types, the user-facing error strings the node
// returns instead of failing, JSON error responses for the HTTP surface,
// and integrated logging with Uber's zap logger.
//
// The node never surfaces a fault to its host: every failure is rendered
// with Display and returned as the node's text output.
//
//	text := errors.Display(errors.NewProviderError("req_123", "generation failed", err))
//	// "API Error: generation failed: ollama: 500 Internal Server Error: model not found"
//
// The HTTP surface writes the same errors as JSON:
//
//	errors.WriteError(w, errors.NewValidationError(requestID, "Invalid request body", nil))
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger receives errors logged without an explicit logger. It
// discards everything until SetLogger installs the process logger.
var DefaultLogger = zap.NewNop()

// SetLogger replaces DefaultLogger. A nil logger is ignored.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// DisplayPrefix starts every user-facing error string.
const DisplayPrefix = "API Error: "

// ErrorType represents different categories of errors that can occur
// while building, sending or answering a generation request.
type ErrorType string

const (
	// ValidationError represents input validation failures
	ValidationError ErrorType = "validation_error"

	// InternalError represents unexpected internal errors
	InternalError ErrorType = "internal_error"

	// ConfigError represents configuration-related errors
	ConfigError ErrorType = "config_error"

	// ProviderError represents failures talking to Ollama: network errors,
	// timeouts and non-2xx responses
	ProviderError ErrorType = "provider_error"

	// EncodingError represents pixel buffers that could not be encoded
	EncodingError ErrorType = "encoding_error"

	// RateLimitError represents rate limiting errors
	RateLimitError ErrorType = "rate_limit_error"

	// NotFoundError represents unknown presets, routes or models
	NotFoundError ErrorType = "not_found"

	// QueueFullError represents generate requests turned away because
	// the generation queue has no room
	QueueFullError ErrorType = "queue_full"
)

// NodeError is our custom error type that implements the error interface
// and provides additional context about the error. It is designed to be
// serialized to JSON for API responses while maintaining internal error
// context for logging and debugging.
type NodeError struct {
	// Type categorizes the error for client handling
	Type ErrorType `json:"type"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"request_id"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *NodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *NodeError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *NodeError) Is(target error) bool {
	t, ok := target.(*NodeError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Display renders err as the string the node returns in place of generated
// text. Unlike Error it omits the type tag, since the reader is a person
// looking at a text output slot.
func Display(err error) string {
	if err == nil {
		return ""
	}

	var nodeErr *NodeError
	if stderrors.As(err, &nodeErr) {
		if nodeErr.err != nil {
			return fmt.Sprintf("%s%s: %v", DisplayPrefix, nodeErr.Message, nodeErr.err)
		}
		return DisplayPrefix + nodeErr.Message
	}
	return DisplayPrefix + err.Error()
}

// WriteError formats and writes a NodeError to an http.ResponseWriter.
// It sets the appropriate content type and status code, then writes
// the error as a JSON response.
func WriteError(w http.ResponseWriter, err *NodeError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
