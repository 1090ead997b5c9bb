package secretsmanagerengine

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

func Test_Server_CreateSecret_thenGetValue(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateSecret", map[string]any{
		"Name":         "db/password",
		"SecretString": "hunter2",
	})
	require.Equal(t, http.StatusOK, create.Code)

	get := doJSON(t, server, "GetSecretValue", map[string]any{"SecretId": "db/password"})
	require.Equal(t, http.StatusOK, get.Code)
	require.Contains(t, get.Body.String(), "hunter2")
}

func Test_Server_CreateSecret_duplicate(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateSecret", map[string]any{"Name": "dup", "SecretString": "v1"})
	resp := doJSON(t, server, "CreateSecret", map[string]any{"Name": "dup", "SecretString": "v2"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceExistsException")
}

func Test_Server_PutSecretValue_rotatesVersion(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateSecret", map[string]any{"Name": "rotating", "SecretString": "v1"})
	put := doJSON(t, server, "PutSecretValue", map[string]any{"SecretId": "rotating", "SecretString": "v2"})
	require.Equal(t, http.StatusOK, put.Code)

	get := doJSON(t, server, "GetSecretValue", map[string]any{"SecretId": "rotating"})
	require.Contains(t, get.Body.String(), "v2")

	versions := doJSON(t, server, "ListSecretVersionIds", map[string]any{"SecretId": "rotating"})
	require.Equal(t, http.StatusOK, versions.Code)
}

func Test_Server_DeleteSecret_thenRestore(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateSecret", map[string]any{"Name": "temp", "SecretString": "v1"})
	del := doJSON(t, server, "DeleteSecret", map[string]any{"SecretId": "temp"})
	require.Equal(t, http.StatusOK, del.Code)

	get := doJSON(t, server, "GetSecretValue", map[string]any{"SecretId": "temp"})
	require.Equal(t, http.StatusBadRequest, get.Code)

	restore := doJSON(t, server, "RestoreSecret", map[string]any{"SecretId": "temp"})
	require.Equal(t, http.StatusOK, restore.Code)

	get2 := doJSON(t, server, "GetSecretValue", map[string]any{"SecretId": "temp"})
	require.Equal(t, http.StatusOK, get2.Code)
}

func Test_Server_GetSecretValue_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "GetSecretValue", map[string]any{"SecretId": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
