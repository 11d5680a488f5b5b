package errors

import (
	"fmt"
	"net/http"
)

// NewError creates a new NodeError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "settings unreadable", 500, "req_123", nil, ioErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *NodeError {
	return &NodeError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewValidationError creates a validation error with appropriate defaults.
// Use this for node inputs that fail their schema, such as:
//   - keep_alive outside its bounds
//   - an unknown input_type or output_format
//   - more images than the node accepts
//
// Example:
//
//	err := NewValidationError("req_123", "Invalid inputs", map[string]interface{}{
//	    "field": "keep_alive",
//	    "error": "lte",
//	})
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *NodeError {
	return &NodeError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewRateLimitError creates a rate limit error with appropriate defaults.
//
// Example:
//
//	err := NewRateLimitError("req_123", 30)
func NewRateLimitError(requestID string, retryAfter int) *NodeError {
	return &NodeError{
		Type:      RateLimitError,
		Message:   "Rate limit exceeded",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		Details: map[string]interface{}{
			"retry_after": retryAfter,
		},
	}
}

// NewProviderError creates a provider error with appropriate defaults.
// Use this when the call to Ollama fails, such as:
//   - connection refused or timeouts
//   - non-2xx responses (the status code travels in err)
//   - an open circuit breaker
//
// Example:
//
//	err := NewProviderError("req_123", "generation failed", statusErr)
func NewProviderError(requestID string, message string, err error) *NodeError {
	return &NodeError{
		Type:      ProviderError,
		Message:   message,
		Code:      http.StatusBadGateway,
		RequestID: requestID,
		err:       err,
	}
}

// NewEncodingError creates an error for pixel buffers that cannot be turned
// into PNG data.
//
// Example:
//
//	err := NewEncodingError("req_123", 2, shapeErr)
func NewEncodingError(requestID string, index int, err error) *NodeError {
	return &NodeError{
		Type:      EncodingError,
		Message:   fmt.Sprintf("image %d could not be encoded", index),
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details: map[string]interface{}{
			"image": index,
		},
		err: err,
	}
}

// NewNotFoundError creates a not found error for the named resource.
//
// Example:
//
//	err := NewNotFoundError("req_123", "preset", "portrait")
func NewNotFoundError(requestID, kind, name string) *NodeError {
	return &NodeError{
		Type:      NotFoundError,
		Message:   kind + " not found: " + name,
		Code:      http.StatusNotFound,
		RequestID: requestID,
		Details: map[string]interface{}{
			kind: name,
		},
	}
}

// NewQueueFullError creates the error returned when the generation queue
// is at capacity.
//
// Example:
//
//	err := NewQueueFullError("req_123", 32)
func NewQueueFullError(requestID string, maxSize int) *NodeError {
	return &NodeError{
		Type:      QueueFullError,
		Message:   "Generation queue is full",
		Code:      http.StatusServiceUnavailable,
		RequestID: requestID,
		Details: map[string]interface{}{
			"max_size": maxSize,
		},
	}
}

// NewInternalError creates an internal server error with appropriate defaults.
// Use this for unexpected errors that are not covered by other error types.
//
// Example:
//
//	err := NewInternalError("req_123", encodeErr)
func NewInternalError(requestID string, err error) *NodeError {
	return &NodeError{
		Type:      InternalError,
		Message:   "An internal error occurred",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
