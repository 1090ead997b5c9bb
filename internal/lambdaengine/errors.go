package lambdaengine

import (
	"net/http"

	"awslite/internal/protocol"
)

func ErrorNotFound(message string) *protocol.RestError {
	return protocol.NewRestError(http.StatusNotFound, "ResourceNotFoundException", message)
}

func ErrorAlreadyExists(message string) *protocol.RestError {
	return protocol.NewRestError(http.StatusConflict, "ResourceConflictException", message)
}
