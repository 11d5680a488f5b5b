package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNodeError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *NodeError
		want    string
		wantErr bool
	}{
		{
			name: "basic error without wrapped error",
			err: &NodeError{
				Type:    ValidationError,
				Message: "invalid input",
			},
			want: "validation_error: invalid input",
		},
		{
			name: "error with wrapped error",
			err: &NodeError{
				Type:    InternalError,
				Message: "processing failed",
				err:     errors.New("database connection failed"),
			},
			want: "internal_error: processing failed: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("NodeError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeError_Is(t *testing.T) {
	err1 := &NodeError{Type: ProviderError, Message: "test1"}
	err2 := &NodeError{Type: ProviderError, Message: "test2"}
	err3 := &NodeError{Type: ValidationError, Message: "test3"}

	if !err1.Is(err2) {
		t.Error("Expected err1.Is(err2) to be true for same error type")
	}

	if err1.Is(err3) {
		t.Error("Expected err1.Is(err3) to be false for different error types")
	}
}

func TestNodeError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	err := &NodeError{
		Type:    InternalError,
		Message: "outer error",
		err:     innerErr,
	}

	if unwrapped := err.Unwrap(); unwrapped != innerErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, innerErr)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "plain error",
			err:  errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"),
			want: "API Error: dial tcp 127.0.0.1:11434: connect: connection refused",
		},
		{
			name: "node error without cause",
			err:  NewValidationError("req", "keep_alive must be at most 60", nil),
			want: "API Error: keep_alive must be at most 60",
		},
		{
			name: "node error with cause",
			err:  NewProviderError("req", "generation failed", errors.New("500 Internal Server Error")),
			want: "API Error: generation failed: 500 Internal Server Error",
		},
		{
			name: "wrapped node error",
			err:  fmt.Errorf("node: %w", NewNotFoundError("req", "preset", "noir")),
			want: "API Error: preset not found: noir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.err); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf(NewProviderError("", "x", nil)); got != ProviderError {
		t.Errorf("TypeOf() = %v, want %v", got, ProviderError)
	}
	if got := TypeOf(errors.New("plain")); got != InternalError {
		t.Errorf("TypeOf() = %v, want %v", got, InternalError)
	}
}
