package protocol

import "fmt"

// JSONError is the AWS JSON 1.0/1.1 error envelope: a top-level "__type"
// plus "message", matched to an HTTP status code that never reaches the
// wire body itself.
type JSONError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"__type"`
	Message    string `json:"message"`
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WithMessage returns a copy of e with Message replaced.
func (e JSONError) WithMessage(message string) *JSONError {
	e.Message = message
	return &e
}

// WithMessagef is WithMessage with fmt.Sprintf formatting.
func (e JSONError) WithMessagef(format string, args ...any) *JSONError {
	e.Message = fmt.Sprintf(format, args...)
	return &e
}

// NewJSONError builds a JSONError for the given envelope type string
// (typically "com.amazonaws.<service>#<ExceptionName>") and status.
func NewJSONError(statusCode int, typ string) *JSONError {
	return &JSONError{StatusCode: statusCode, Type: typ}
}
