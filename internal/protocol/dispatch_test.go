package protocol

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_TargetAction(t *testing.T) {
	prefix, action, ok := TargetAction("DynamoDB_20120810.CreateTable")
	require.True(t, ok)
	require.Equal(t, "DynamoDB_20120810", prefix)
	require.Equal(t, "CreateTable", action)

	_, _, ok = TargetAction("NoDotHere")
	require.False(t, ok)
}

func Test_JSONDispatcher_routesByTarget(t *testing.T) {
	d := NewJSONDispatcher("ExampleService_20200101", "application/x-amz-json-1.0")
	d.Handle("DoThing", func(rw http.ResponseWriter, req *http.Request) {
		WriteJSONResult(rw, d.ContentType, map[string]string{"ok": "true"})
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderAmzTarget, "ExampleService_20200101.DoThing")
	rw := httptest.NewRecorder()
	d.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), `"ok":"true"`)
}

func Test_JSONDispatcher_unknownAction(t *testing.T) {
	d := NewJSONDispatcher("ExampleService_20200101", "application/x-amz-json-1.0")
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderAmzTarget, "ExampleService_20200101.NoSuchOp")
	rw := httptest.NewRecorder()
	d.ServeHTTP(rw, req)
	require.Equal(t, http.StatusBadRequest, rw.Code)
	require.Contains(t, rw.Body.String(), "UnknownOperationException")
}

func Test_QueryDispatcher_routesByAction(t *testing.T) {
	d := NewQueryDispatcher()
	d.Handle("CreateTopic", func(rw http.ResponseWriter, req *http.Request, values url.Values) {
		require.Equal(t, "my-topic", values.Get("Name"))
		WriteQueryResult(rw, struct {
			XMLName string `xml:"CreateTopicResponse"`
		}{})
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("Action=CreateTopic&Name=my-topic"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rw := httptest.NewRecorder()
	d.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "CreateTopicResponse")
}

func Test_QueryDispatcher_missingAction(t *testing.T) {
	d := NewQueryDispatcher()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rw := httptest.NewRecorder()
	d.ServeHTTP(rw, req)
	require.Equal(t, http.StatusBadRequest, rw.Code)
	require.Contains(t, rw.Body.String(), "InvalidAction")
}

func Test_RestRouter_pathParams(t *testing.T) {
	r := NewRestRouter()
	r.Handle(http.MethodGet, "/2015-03-31/functions/{FunctionName}", func(rw http.ResponseWriter, req *http.Request) {
		WriteRestJSON(rw, http.StatusOK, map[string]string{"FunctionName": PathParam(req, "FunctionName")})
	})

	req := httptest.NewRequest(http.MethodGet, "/2015-03-31/functions/my-fn", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "my-fn")
}

func Test_RestRouter_notFound(t *testing.T) {
	r := NewRestRouter()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	require.Equal(t, http.StatusNotFound, rw.Code)
	require.Equal(t, "NotFoundException", rw.Header().Get("x-amzn-ErrorType"))
}
