package lambdaengine

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func doRest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rw := httptest.NewRecorder()
	server.ServeHTTP(rw, req)
	return rw
}

func Test_Server_CreateFunction_thenGet(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doRest(t, server, http.MethodPost, "/2015-03-31/functions", map[string]any{
		"FunctionName": "process-order",
		"Runtime":      "nodejs18.x",
		"Handler":      "index.handler",
		"Role":         "arn:aws:iam::000000000000:role/lambda-role",
	})
	require.Equal(t, http.StatusCreated, create.Code)

	get := doRest(t, server, http.MethodGet, "/2015-03-31/functions/process-order", nil)
	require.Equal(t, http.StatusOK, get.Code)
	require.Contains(t, get.Body.String(), "nodejs18.x")
}

func Test_Server_Invoke_echoesPayload(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doRest(t, server, http.MethodPost, "/2015-03-31/functions", map[string]any{
		"FunctionName": "echo", "Runtime": "python3.12", "Handler": "app.handler", "Role": "role",
	})
	invoke := doRest(t, server, http.MethodPost, "/2015-03-31/functions/echo/invocations", map[string]any{"hello": "world"})
	require.Equal(t, http.StatusOK, invoke.Code)
	require.Contains(t, invoke.Body.String(), "hello")
}

func Test_Server_DeleteFunction_thenGetNotFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doRest(t, server, http.MethodPost, "/2015-03-31/functions", map[string]any{
		"FunctionName": "temp", "Runtime": "go1.x", "Handler": "main", "Role": "role",
	})
	del := doRest(t, server, http.MethodDelete, "/2015-03-31/functions/temp", nil)
	require.Equal(t, http.StatusNoContent, del.Code)

	get := doRest(t, server, http.MethodGet, "/2015-03-31/functions/temp", nil)
	require.Equal(t, http.StatusNotFound, get.Code)
}

func Test_Server_ListFunctions(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doRest(t, server, http.MethodPost, "/2015-03-31/functions", map[string]any{
		"FunctionName": "a", "Runtime": "go1.x", "Handler": "main", "Role": "role",
	})
	doRest(t, server, http.MethodPost, "/2015-03-31/functions", map[string]any{
		"FunctionName": "b", "Runtime": "go1.x", "Handler": "main", "Role": "role",
	})
	list := doRest(t, server, http.MethodGet, "/2015-03-31/functions", nil)
	require.Equal(t, http.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), "\"a\"")
	require.Contains(t, list.Body.String(), "\"b\"")
}
