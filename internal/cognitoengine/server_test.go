package cognitoengine

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

func createPool(t *testing.T, server *Server) string {
	t.Helper()
	resp := doJSON(t, server, "CreateUserPool", map[string]any{"PoolName": "customers"})
	require.Equal(t, http.StatusOK, resp.Code)
	var out struct {
		UserPool struct{ Id string }
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out.UserPool.Id
}

func Test_Server_CreateUserPool_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	poolID := createPool(t, server)
	resp := doJSON(t, server, "DescribeUserPool", map[string]any{"UserPoolId": poolID})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "customers")
}

func Test_Server_AdminCreateUser_thenAuthenticate(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	poolID := createPool(t, server)

	create := doJSON(t, server, "AdminCreateUser", map[string]any{
		"UserPoolId": poolID, "Username": "alice", "TemporaryPassword": "Temp123!",
	})
	require.Equal(t, http.StatusOK, create.Code)

	doJSON(t, server, "AdminSetUserPassword", map[string]any{
		"UserPoolId": poolID, "Username": "alice", "Password": "Perm123!", "Permanent": true,
	})

	auth := doJSON(t, server, "AdminInitiateAuth", map[string]any{
		"UserPoolId": poolID,
		"AuthParameters": map[string]any{"USERNAME": "alice", "PASSWORD": "Perm123!"},
	})
	require.Equal(t, http.StatusOK, auth.Code)
	require.Contains(t, auth.Body.String(), "AccessToken")
}

func Test_Server_AdminInitiateAuth_wrongPassword(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	poolID := createPool(t, server)
	doJSON(t, server, "AdminCreateUser", map[string]any{
		"UserPoolId": poolID, "Username": "bob", "TemporaryPassword": "Temp123!",
	})
	auth := doJSON(t, server, "AdminInitiateAuth", map[string]any{
		"UserPoolId": poolID,
		"AuthParameters": map[string]any{"USERNAME": "bob", "PASSWORD": "wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, auth.Code)
}

func Test_Server_CreateUserPoolClient_andList(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	poolID := createPool(t, server)
	doJSON(t, server, "CreateUserPoolClient", map[string]any{"UserPoolId": poolID, "ClientName": "web-app"})
	list := doJSON(t, server, "ListUserPoolClients", map[string]any{"UserPoolId": poolID})
	require.Equal(t, http.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), "web-app")
}

func Test_Server_AdminGetUser_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	poolID := createPool(t, server)
	resp := doJSON(t, server, "AdminGetUser", map[string]any{"UserPoolId": poolID, "Username": "nobody"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
