package protocol

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderAmzTarget is the header AWS JSON 1.0/1.1 clients set to name the
// action: "<ServicePrefix>.<Action>".
const HeaderAmzTarget = "X-Amz-Target"

// TargetAction splits an X-Amz-Target header value into its service prefix
// and action name, splitting at the last dot. ok is false if header
// contains no dot.
func TargetAction(header string) (prefix, action string, ok bool) {
	idx := strings.LastIndex(header, ".")
	if idx < 0 {
		return "", "", false
	}
	return header[:idx], header[idx+1:], true
}

// DecodeJSON reads the request body as JSON into a new V. An empty body
// decodes to the zero value of V, matching how AWS JSON clients omit the
// body entirely for input-less operations.
func DecodeJSON[V any](req *http.Request) (*V, *JSONError) {
	var value V
	if req.Body == nil {
		return &value, nil
	}
	defer req.Body.Close()
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(&value); err != nil {
		if err.Error() == "EOF" {
			return &value, nil
		}
		return nil, NewJSONError(http.StatusBadRequest, "SerializationException").
			WithMessagef("failed to parse request body: %v", err)
	}
	return &value, nil
}

// WriteJSONResult writes v as a 200 AWS-JSON response with the given
// envelope content type ("application/x-amz-json-1.0" or "1.1").
func WriteJSONResult(rw http.ResponseWriter, contentType string, v any) {
	rw.Header().Set("Content-Type", contentType)
	rw.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(rw).Encode(v)
}

// WriteJSONError writes a JSONError with its own status code.
func WriteJSONError(rw http.ResponseWriter, contentType string, err *JSONError) {
	rw.Header().Set("Content-Type", contentType)
	rw.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(rw).Encode(err)
}

// JSONDispatcher is a generic AWS JSON 1.0/1.1 front-end: POST to "/",
// action chosen by the X-Amz-Target header suffix after ServicePrefix.
// Individual thin-store services construct one of these and register a
// handler per action instead of hand-rolling the switch statement sqsengine
// predates this package with.
type JSONDispatcher struct {
	ServicePrefix string
	ContentType   string
	routes        map[string]http.HandlerFunc
}

// NewJSONDispatcher returns a dispatcher for the given service prefix
// (e.g. "DynamoDB_20120810") and content type
// (e.g. "application/x-amz-json-1.0").
func NewJSONDispatcher(servicePrefix, contentType string) *JSONDispatcher {
	return &JSONDispatcher{
		ServicePrefix: servicePrefix,
		ContentType:   contentType,
		routes:        make(map[string]http.HandlerFunc),
	}
}

// Handle registers fn as the handler for the named action.
func (d *JSONDispatcher) Handle(action string, fn http.HandlerFunc) {
	d.routes[action] = fn
}

var _ http.Handler = (*JSONDispatcher)(nil)

// ServeHTTP implements [http.Handler].
func (d *JSONDispatcher) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost || req.URL.Path != "/" {
		WriteJSONError(rw, d.ContentType, NewJSONError(http.StatusBadRequest, "UnknownOperationException").
			WithMessagef("expected POST /, got %s %s", req.Method, req.URL.Path))
		return
	}
	prefix, action, ok := TargetAction(req.Header.Get(HeaderAmzTarget))
	if !ok || prefix != d.ServicePrefix {
		WriteJSONError(rw, d.ContentType, NewJSONError(http.StatusBadRequest, "UnknownOperationException").
			WithMessagef("unrecognized %s: %q", HeaderAmzTarget, req.Header.Get(HeaderAmzTarget)))
		return
	}
	handler, ok := d.routes[action]
	if !ok {
		WriteJSONError(rw, d.ContentType, NewJSONError(http.StatusBadRequest, "UnknownOperationException").
			WithMessagef("unknown operation %s.%s", prefix, action))
		return
	}
	handler(rw, req)
}
