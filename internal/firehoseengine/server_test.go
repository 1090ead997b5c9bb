package firehoseengine

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

func Test_Server_CreateDeliveryStream_putRecord(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateDeliveryStream", map[string]any{"DeliveryStreamName": "logs"})
	require.Equal(t, http.StatusOK, create.Code)

	put := doJSON(t, server, "PutRecord", map[string]any{
		"DeliveryStreamName": "logs",
		"Record":             map[string]any{"Data": []byte("line one")},
	})
	require.Equal(t, http.StatusOK, put.Code)
	require.Contains(t, put.Body.String(), "RecordId")
}

func Test_Server_DeleteDeliveryStream_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "DeleteDeliveryStream", map[string]any{"DeliveryStreamName": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
