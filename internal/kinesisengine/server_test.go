package kinesisengine

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

func Test_Server_CreateStream_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateStream", map[string]any{"StreamName": "events", "ShardCount": 2})
	require.Equal(t, http.StatusOK, create.Code)

	describe := doJSON(t, server, "DescribeStream", map[string]any{"StreamName": "events"})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), `"StreamStatus":"ACTIVE"`)
	require.Contains(t, describe.Body.String(), "shardId-000000000000")
	require.Contains(t, describe.Body.String(), "shardId-000000000001")
}

func Test_Server_PutRecord_GetRecords_roundtrip(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	doJSON(t, server, "CreateStream", map[string]any{"StreamName": "events", "ShardCount": 1})

	put := doJSON(t, server, "PutRecord", map[string]any{
		"StreamName":   "events",
		"PartitionKey": "pk",
		"Data":         []byte("hello"),
	})
	require.Equal(t, http.StatusOK, put.Code)

	iter := doJSON(t, server, "GetShardIterator", map[string]any{
		"StreamName":       "events",
		"ShardId":          "shardId-000000000000",
		"ShardIteratorType": "TRIM_HORIZON",
	})
	require.Equal(t, http.StatusOK, iter.Code)
	var iterOut struct {
		ShardIterator string
	}
	require.NoError(t, json.Unmarshal(iter.Body.Bytes(), &iterOut))
	require.NotEmpty(t, iterOut.ShardIterator)

	records := doJSON(t, server, "GetRecords", map[string]any{"ShardIterator": iterOut.ShardIterator})
	require.Equal(t, http.StatusOK, records.Code)
	require.Contains(t, records.Body.String(), "aGVsbG8=")
}

func Test_Server_DescribeStream_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "DescribeStream", map[string]any{"StreamName": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}
