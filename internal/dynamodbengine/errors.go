package dynamodbengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.dynamodb.v20120810#"

func ErrorResourceNotFound() *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage("Requested resource not found")
}

func ErrorResourceInUse() *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceInUseException").
		WithMessage("Table already exists")
}

func ErrorValidation(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ValidationException").
		WithMessage(message)
}
