package snsengine

import (
	"net/http"

	"awslite/internal/protocol"
)

func newError(code, message string) *protocol.QueryError {
	return protocol.NewQueryError(http.StatusBadRequest, code, message)
}

func ErrorTopicNotFound() *protocol.QueryError {
	return newError("NotFound", "Topic does not exist")
}

func ErrorSubscriptionNotFound() *protocol.QueryError {
	return newError("NotFound", "Subscription does not exist")
}

func ErrorInvalidParameter(parameter string) *protocol.QueryError {
	return newError("InvalidParameter", "Invalid parameter: "+parameter)
}

func ErrorTopicAlreadyExists() *protocol.QueryError {
	return newError("InvalidParameter", "Invalid parameter: Name already in use with different attributes")
}

func ErrorTagLimitExceeded() *protocol.QueryError {
	return newError("TagLimitExceeded", "Could not complete request: tag quota exceeded")
}
