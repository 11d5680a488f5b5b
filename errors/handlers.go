package errors

import (
	stderrors "errors"

	"go.uber.org/zap"
)

// LogError logs an error with its context. A nil logger falls back to
// DefaultLogger.
func LogError(logger *zap.Logger, err error, requestID string) {
	if logger == nil {
		logger = DefaultLogger
	}

	var nodeErr *NodeError
	if stderrors.As(err, &nodeErr) {
		logger.Error("request error",
			zap.String("error_type", string(nodeErr.Type)),
			zap.String("message", nodeErr.Message),
			zap.Int("code", nodeErr.Code),
			zap.String("request_id", requestID),
			zap.Any("details", nodeErr.Details),
			zap.NamedError("cause", nodeErr.err),
		)
		return
	}
	logger.Error("unexpected error",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
}
