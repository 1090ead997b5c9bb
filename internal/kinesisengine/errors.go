package kinesisengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.kinesis#"

func ErrorResourceNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage(message)
}

func ErrorResourceInUse(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceInUseException").
		WithMessage(message)
}

func ErrorInvalidArgument(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"InvalidArgumentException").
		WithMessage(message)
}
