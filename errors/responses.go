package errors

import (
	"errors"
)

// TypeOf returns the ErrorType carried by err, or InternalError when err is
// not a NodeError.
func TypeOf(err error) ErrorType {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr.Type
	}
	return InternalError
}
