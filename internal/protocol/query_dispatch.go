package protocol

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
)

// QueryError is the AWS Query error envelope:
// <ErrorResponse><Error><Type/><Code/><Message/></Error><RequestId/></ErrorResponse>.
type QueryError struct {
	XMLName    xml.Name `xml:"ErrorResponse"`
	Type       string   `xml:"Error>Type"`
	Code       string   `xml:"Error>Code"`
	Message    string   `xml:"Error>Message"`
	RequestID  string   `xml:"RequestId"`
	StatusCode int      `xml:"-"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewQueryError builds a sender-fault QueryError for the given AWS error
// code (e.g. "TopicNotFound").
func NewQueryError(statusCode int, code, message string) *QueryError {
	return &QueryError{
		Type:       "Sender",
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// ResponseMetadata is the trailing element every AWS Query response embeds
// inside its wrapping envelope.
type ResponseMetadata struct {
	RequestID string `xml:"RequestId"`
}

// DecodeQuery parses the request as application/x-www-form-urlencoded and
// returns the form values plus the mandatory Action field.
func DecodeQuery(req *http.Request) (action string, values url.Values, qerr *QueryError) {
	if err := req.ParseForm(); err != nil {
		return "", nil, NewQueryError(http.StatusBadRequest, "InvalidParameterValue", "failed to parse request body: "+err.Error())
	}
	action = req.PostForm.Get("Action")
	if action == "" {
		return "", nil, NewQueryError(http.StatusBadRequest, "InvalidAction", "missing required Action parameter")
	}
	return action, req.PostForm, nil
}

// WriteQueryResult marshals v (which must already be the full
// "<Action>Response" envelope struct, ResponseMetadata included) as the XML
// response body.
func WriteQueryResult(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "text/xml")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte(xml.Header))
	_ = xml.NewEncoder(rw).Encode(v)
}

// WriteQueryError writes a QueryError with its own status code.
func WriteQueryError(rw http.ResponseWriter, err *QueryError) {
	rw.Header().Set("Content-Type", "text/xml")
	rw.WriteHeader(err.StatusCode)
	_, _ = rw.Write([]byte(xml.Header))
	_ = xml.NewEncoder(rw).Encode(err)
}

// QueryDispatcher is a generic AWS Query front-end: POST to "/", action
// chosen by the form-encoded Action field, XML response/error envelope.
type QueryDispatcher struct {
	routes map[string]func(http.ResponseWriter, *http.Request, url.Values)
}

// NewQueryDispatcher returns an empty dispatcher.
func NewQueryDispatcher() *QueryDispatcher {
	return &QueryDispatcher{routes: make(map[string]func(http.ResponseWriter, *http.Request, url.Values))}
}

// Handle registers fn as the handler for the named Action.
func (d *QueryDispatcher) Handle(action string, fn func(http.ResponseWriter, *http.Request, url.Values)) {
	d.routes[action] = fn
}

var _ http.Handler = (*QueryDispatcher)(nil)

// ServeHTTP implements [http.Handler].
func (d *QueryDispatcher) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		WriteQueryError(rw, NewQueryError(http.StatusMethodNotAllowed, "InvalidAction", "expected POST"))
		return
	}
	action, values, qerr := DecodeQuery(req)
	if qerr != nil {
		WriteQueryError(rw, qerr)
		return
	}
	handler, ok := d.routes[action]
	if !ok {
		WriteQueryError(rw, NewQueryError(http.StatusBadRequest, "InvalidAction", fmt.Sprintf("unknown action %q", action)))
		return
	}
	handler(rw, req, values)
}
