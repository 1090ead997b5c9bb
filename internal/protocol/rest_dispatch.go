package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RestError is the plain REST+JSON error shape: an "x-amzn-ErrorType"
// header plus a JSON body carrying a "message" field.
type RestError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"-"`
	Message    string `json:"message"`
}

func (e *RestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewRestError builds a RestError for the given status/type.
func NewRestError(statusCode int, typ, message string) *RestError {
	return &RestError{StatusCode: statusCode, Type: typ, Message: message}
}

// DecodeRestJSON reads the request body as JSON into a new V.
func DecodeRestJSON[V any](req *http.Request) (*V, *RestError) {
	var value V
	if req.Body == nil {
		return &value, nil
	}
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(&value); err != nil {
		if err.Error() == "EOF" {
			return &value, nil
		}
		return nil, NewRestError(http.StatusBadRequest, "SerializationException", "failed to parse request body: "+err.Error())
	}
	return &value, nil
}

// WriteRestJSON writes v as a JSON response with the given status.
func WriteRestJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// WriteRestError writes a RestError, setting x-amzn-ErrorType.
func WriteRestError(rw http.ResponseWriter, err *RestError) {
	rw.Header().Set("x-amzn-ErrorType", err.Type)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(rw).Encode(err)
}

type restRoute struct {
	method  string
	segs    []string
	handler http.HandlerFunc
}

type contextKey string

// RestRouter is a minimal method+path-pattern router for the plain
// REST+JSON family (Lambda, API Gateway, SES v2), whose operations are
// identified by (method, versioned path pattern) rather than a single
// action field. Segments in a pattern starting with "{" are path
// parameters, retrieved in handlers via [PathParam]. Generalizes the
// teacher's flat per-service method/path switch into a small data-driven
// table so each thin store only has to declare its routes.
type RestRouter struct {
	routes []restRoute
}

// NewRestRouter returns an empty router.
func NewRestRouter() *RestRouter {
	return &RestRouter{}
}

// Handle registers fn for the given method and slash-separated pattern,
// e.g. Handle("GET", "/2015-03-31/functions/{FunctionName}", h).
func (r *RestRouter) Handle(method, pattern string, fn http.HandlerFunc) {
	r.routes = append(r.routes, restRoute{
		method:  method,
		segs:    splitPath(pattern),
		handler: fn,
	})
}

var _ http.Handler = (*RestRouter)(nil)

// ServeHTTP implements [http.Handler].
func (r *RestRouter) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	reqSegs := splitPath(req.URL.Path)
	for _, route := range r.routes {
		if route.method != req.Method {
			continue
		}
		params, ok := matchPath(route.segs, reqSegs)
		if !ok {
			continue
		}
		ctx := req.Context()
		for k, v := range params {
			ctx = context.WithValue(ctx, contextKey(k), v)
		}
		route.handler(rw, req.WithContext(ctx))
		return
	}
	WriteRestError(rw, NewRestError(http.StatusNotFound, "NotFoundException", fmt.Sprintf("no route for %s %s", req.Method, req.URL.Path)))
}

// PathParam retrieves a path parameter set by [RestRouter.ServeHTTP].
func PathParam(req *http.Request, name string) string {
	v, _ := req.Context().Value(contextKey(name)).(string)
	return v
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPath(pattern, actual []string) (map[string]string, bool) {
	if len(pattern) != len(actual) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params[strings.Trim(seg, "{}")] = actual[i]
			continue
		}
		if seg != actual[i] {
			return nil, false
		}
	}
	return params, true
}
