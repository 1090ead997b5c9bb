package ssmengine

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, server *Server, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("X-Amz-Target", ServicePrefix+"."+target)
	rw := httptest.NewRecorder()
	server.ServeHTTP(rw, req)
	return rw
}

func Test_Server_PutParameter_SecureString_roundtrip(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	put := doJSON(t, server, "PutParameter", map[string]any{
		"Name":  "/app/db/password",
		"Value": "hunter2",
		"Type":  "SecureString",
	})
	require.Equal(t, http.StatusOK, put.Code)

	get := doJSON(t, server, "GetParameter", map[string]any{
		"Name":           "/app/db/password",
		"WithDecryption": true,
	})
	require.Equal(t, http.StatusOK, get.Code)
	require.Contains(t, get.Body.String(), "hunter2")

	getEncrypted := doJSON(t, server, "GetParameter", map[string]any{"Name": "/app/db/password"})
	require.NotContains(t, getEncrypted.Body.String(), "hunter2")
}

func Test_Server_GetParameter_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	resp := doJSON(t, server, "GetParameter", map[string]any{"Name": "/missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ParameterNotFound")
}
