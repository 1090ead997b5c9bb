package memorydbengine

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

func Test_Server_CreateCluster_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateCluster", map[string]any{
		"ClusterName": "sessions",
		"NodeType":    "db.r6g.large",
		"ACLName":     "open-access",
		"NumShards":   2,
	})
	require.Equal(t, http.StatusOK, create.Code)
	require.Contains(t, create.Body.String(), "sessions")

	describe := doJSON(t, server, "DescribeClusters", map[string]any{"ClusterName": "sessions"})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), "available")
}

func Test_Server_CreateCluster_duplicate(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateCluster", map[string]any{"ClusterName": "dup", "NodeType": "db.t4g.small", "ACLName": "open-access"})
	resp := doJSON(t, server, "CreateCluster", map[string]any{"ClusterName": "dup", "NodeType": "db.t4g.small", "ACLName": "open-access"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ClusterAlreadyExistsFault")
}

func Test_Server_CreateUser_CreateACL_UpdateACL(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateUser", map[string]any{"UserName": "app-user", "AccessString": "on ~* +@all"})
	doJSON(t, server, "CreateACL", map[string]any{"ACLName": "app-acl", "UserNames": []string{"app-user"}})

	update := doJSON(t, server, "UpdateACL", map[string]any{
		"ACLName":        "app-acl",
		"UserNamesToAdd": []string{"second-user"},
	})
	require.Equal(t, http.StatusOK, update.Code)
	require.Contains(t, update.Body.String(), "second-user")
}

func Test_Server_TagResource_thenListTags(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	arn := "arn:aws:memorydb:us-east-1:000000000000:cluster/sessions"
	tag := doJSON(t, server, "TagResource", map[string]any{
		"ResourceArn": arn,
		"Tags":        []map[string]any{{"Key": "env", "Value": "prod"}},
	})
	require.Equal(t, http.StatusOK, tag.Code)

	list := doJSON(t, server, "ListTags", map[string]any{"ResourceArn": arn})
	require.Equal(t, http.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), "prod")
}

func Test_Server_DeleteCluster_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "DeleteCluster", map[string]any{"ClusterName": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ClusterNotFoundFault")
}
