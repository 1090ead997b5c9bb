package s3engine

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// Error is the bare S3 XML error envelope: <Error><Code/><Message/></Error>,
// no wrapping <ErrorResponse> (unlike the SNS/Query-protocol error shape).
type Error struct {
	XMLName    xml.Name `xml:"Error"`
	StatusCode int      `xml:"-"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	Resource   string   `xml:"Resource,omitempty"`
	RequestID  string   `xml:"RequestId,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(statusCode int, code, message string) *Error {
	return &Error{StatusCode: statusCode, Code: code, Message: message}
}

func ErrorNoSuchBucket(bucket string) *Error {
	return newError(http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist").withResource(bucket)
}

func ErrorNoSuchKey(key string) *Error {
	return newError(http.StatusNotFound, "NoSuchKey", "The specified key does not exist").withResource(key)
}

func ErrorNoSuchUpload() *Error {
	return newError(http.StatusNotFound, "NoSuchUpload", "The specified multipart upload does not exist")
}

func ErrorBucketAlreadyOwnedByYou(bucket string) *Error {
	return newError(http.StatusConflict, "BucketAlreadyOwnedByYou", "Your previous request to create the named bucket succeeded and you already own it").withResource(bucket)
}

func ErrorBucketNotEmpty(bucket string) *Error {
	return newError(http.StatusConflict, "BucketNotEmpty", "The bucket you tried to delete is not empty").withResource(bucket)
}

func ErrorInvalidBucketName(bucket string) *Error {
	return newError(http.StatusBadRequest, "InvalidBucketName", "The specified bucket is not valid").withResource(bucket)
}

func ErrorInvalidArgument(message string) *Error {
	return newError(http.StatusBadRequest, "InvalidArgument", message)
}

func ErrorInvalidRange() *Error {
	return newError(http.StatusRequestedRangeNotSatisfiable, "InvalidRange", "The requested range is not satisfiable")
}

func ErrorInvalidPart() *Error {
	return newError(http.StatusBadRequest, "InvalidPart", "One or more of the specified parts could not be found")
}

func ErrorInvalidPartOrder() *Error {
	return newError(http.StatusBadRequest, "InvalidPartOrder", "The list of parts was not in ascending order")
}

func ErrorEntityTooSmall() *Error {
	return newError(http.StatusBadRequest, "EntityTooSmall", "Your proposed upload is smaller than the minimum allowed size")
}

func ErrorEntityTooLarge() *Error {
	return newError(http.StatusBadRequest, "EntityTooLarge", "Your proposed upload exceeds the maximum allowed size")
}

func ErrorNotImplemented(operation string) *Error {
	return newError(http.StatusNotImplemented, "NotImplemented", fmt.Sprintf("%s is not implemented", operation))
}

func ErrorInternal(message string) *Error {
	return newError(http.StatusInternalServerError, "InternalError", message)
}

func ErrorMethodNotAllowed(method string) *Error {
	return newError(http.StatusMethodNotAllowed, "MethodNotAllowed", fmt.Sprintf("The specified method %s is not allowed against this resource", method))
}

func (e *Error) withResource(resource string) *Error {
	e.Resource = resource
	return e
}
