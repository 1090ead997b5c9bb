package cloudwatchlogsengine

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

func Test_Server_PutLogEvents_FilterLogEvents_substringMatch(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	doJSON(t, server, "CreateLogGroup", map[string]any{"logGroupName": "/app/service"})
	doJSON(t, server, "CreateLogStream", map[string]any{"logGroupName": "/app/service", "logStreamName": "2026/08/06"})

	put := doJSON(t, server, "PutLogEvents", map[string]any{
		"logGroupName":  "/app/service",
		"logStreamName": "2026/08/06",
		"logEvents": []map[string]any{
			{"timestamp": 1000, "message": "starting up"},
			{"timestamp": 2000, "message": "request failed: timeout"},
		},
	})
	require.Equal(t, http.StatusOK, put.Code)
	require.Contains(t, put.Body.String(), "nextSequenceToken")

	filter := doJSON(t, server, "FilterLogEvents", map[string]any{
		"logGroupName":  "/app/service",
		"filterPattern": "failed",
	})
	require.Equal(t, http.StatusOK, filter.Code)
	require.Contains(t, filter.Body.String(), "request failed: timeout")
	require.NotContains(t, filter.Body.String(), "starting up")
}

func Test_Server_CreateLogStream_groupNotFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	resp := doJSON(t, server, "CreateLogStream", map[string]any{"logGroupName": "missing", "logStreamName": "s"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
