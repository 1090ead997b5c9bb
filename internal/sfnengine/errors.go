package sfnengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.states#"

func ErrorResourceNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"StateMachineDoesNotExist").
		WithMessage(message)
}

func ErrorExecutionDoesNotExist(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ExecutionDoesNotExist").
		WithMessage(message)
}

func ErrorAlreadyExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"StateMachineAlreadyExists").
		WithMessage(message)
}
