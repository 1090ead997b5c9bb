package cloudwatchlogsengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.logs#"

func ErrorResourceNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage(message)
}

func ErrorResourceAlreadyExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceAlreadyExistsException").
		WithMessage(message)
}
