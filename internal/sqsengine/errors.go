package sqsengine

import (
	"fmt"
	"net/http"
)

// Error is the AWS JSON error envelope shape returned to clients.
type Error struct {
	StatusCode  int    `json:"-"`
	Type        string `json:"__type"`
	Code        string `json:"-"`
	Message     string `json:"message"`
	SenderFault bool   `json:"-"`
}

func (e Error) WithMessage(message string) *Error {
	e.Message = message
	return &e
}

func (e Error) WithMessagef(format string, args ...any) *Error {
	e.Message = fmt.Sprintf(format, args...)
	return &e
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newClientError(code string) *Error {
	return &Error{
		StatusCode:  http.StatusBadRequest,
		Type:        "com.amazonaws.sqs#" + code,
		Code:        code,
		SenderFault: true,
	}
}

func ErrorInvalidAddress() *Error {
	return newClientError("InvalidAddress")
}

func ErrorInvalidParameterValueException() *Error {
	return newClientError("InvalidParameterValueException")
}

func ErrorInvalidParameterValue(parameter string) *Error {
	return newClientError("InvalidParameterValueException").WithMessagef("Value for parameter %s is invalid.", parameter)
}

func ErrorMissingRequiredParameter(parameter string) *Error {
	return newClientError("MissingParameter").WithMessagef("The request must contain the parameter %s.", parameter)
}

func ErrorQueueNameAlreadyExists() *Error {
	return newClientError("QueueNameExists")
}

func ErrorQueueDoesNotExist() *Error {
	return newClientError("QueueDoesNotExist")
}

func ErrorQueueDeletedRecently() *Error {
	return newClientError("QueueDeletedRecently")
}

func ErrorResponseInvalidSecurity() *Error {
	return newClientError("InvalidSecurity")
}

func ErrorUnauthorized() *Error {
	e := newClientError("InvalidSecurity")
	e.StatusCode = http.StatusForbidden
	return e
}

func ErrorInvalidAttributeName() *Error {
	return newClientError("InvalidAttributeName")
}

func ErrorInvalidAttributeValue() *Error {
	return newClientError("InvalidAttributeValue")
}

func ErrorInvalidMessageContents() *Error {
	return newClientError("InvalidMessageContents")
}

func ErrorUnsupportedOperation() *Error {
	return newClientError("UnsupportedOperation")
}

func ErrorResourceNotFoundException() *Error {
	return newClientError("ResourceNotFoundException")
}

func ErrorReceiptHandleIsInvalid() *Error {
	return newClientError("ReceiptHandleIsInvalid")
}

func ErrorInternalServer(message string) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Type:       "com.amazonaws.sqs#InternalServerError",
		Code:       "InternalServerError",
		Message:    message,
	}
}

func ErrorTooManyEntriesInBatchRequest() *Error {
	return newClientError("TooManyEntriesInBatchRequest")
}

func ErrorBatchEntryIdsNotDistinct() *Error {
	return newClientError("BatchEntryIdsNotDistinct")
}

func ErrorInvalidBatchEntryID() *Error {
	return newClientError("InvalidBatchEntryId")
}

func ErrorBatchRequestTooLong() *Error {
	return newClientError("BatchRequestTooLong")
}

func ErrorUnknownOperation(action string) *Error {
	return newClientError("UnknownOperationException").WithMessagef("The operation %s is not recognized.", action)
}

func ErrorResponseInvalidMethod(method string) *Error {
	e := newClientError("InvalidRequestContentException")
	e.Message = fmt.Sprintf("HTTP method %s is not supported, use POST.", method)
	return e
}
