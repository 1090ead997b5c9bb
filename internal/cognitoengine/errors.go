package cognitoengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.cognitoidentityprovider#"

func ErrorNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"ResourceNotFoundException").
		WithMessage(message)
}

func ErrorUsernameExists(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"UsernameExistsException").
		WithMessage(message)
}

func ErrorNotAuthorized(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusUnauthorized, errorPrefix+"NotAuthorizedException").
		WithMessage(message)
}
