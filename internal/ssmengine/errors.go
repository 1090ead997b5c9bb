package ssmengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.ssm#"

func ErrorParameterNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ParameterNotFound").
		WithMessage(message)
}

func ErrorAlreadyExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ParameterAlreadyExists").
		WithMessage(message)
}
