package firehoseengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.firehose#"

func ErrorResourceNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage(message)
}

func ErrorResourceInUse(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceInUseException").
		WithMessage(message)
}
