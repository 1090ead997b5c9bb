package kmsengine

import (
	"net/http"

	"awslite/internal/protocol"
)

const errorPrefix = "com.amazonaws.kms#"

func ErrorNotFound(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"NotFoundException").
		WithMessage(message)
}

func ErrorInvalidCiphertext(message string) *protocol.JSONError {
	return protocol.NewJSONError(http.StatusBadRequest, errorPrefix+"InvalidCiphertextException").
		WithMessage(message)
}
