package eventbridgeengine

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

func Test_Server_PutRule_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	put := doJSON(t, server, "PutRule", map[string]any{"Name": "my-rule", "EventPattern": `{"source":["app"]}`})
	require.Equal(t, http.StatusOK, put.Code)

	describe := doJSON(t, server, "DescribeRule", map[string]any{"Name": "my-rule"})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), "ENABLED")
}

func Test_Server_PutEvents(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "PutEvents", map[string]any{
		"Entries": []map[string]any{
			{"Source": "app", "DetailType": "order", "Detail": "{}"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "EventId")
}

func Test_Server_DeleteRule_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "DeleteRule", map[string]any{"Name": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
