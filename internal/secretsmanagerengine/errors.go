package secretsmanagerengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.secretsmanager#"

func ErrorNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage(message)
}

func ErrorAlreadyExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceExistsException").
		WithMessage(message)
}

func ErrorInvalidRequest(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"InvalidRequestException").
		WithMessage(message)
}
