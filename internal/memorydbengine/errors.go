package memorydbengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.memorydb#"

func ErrorNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ClusterNotFoundFault").
		WithMessage(message)
}

func ErrorAlreadyExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ClusterAlreadyExistsFault").
		WithMessage(message)
}
