package adminengine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Server_ListServices(t *testing.T) {
	server := NewServer(
		Source{Name: "sqs", Entities: func() []any { return []any{"queue-a", "queue-b"} }},
		Source{Name: "s3", Entities: func() []any { return []any{"bucket-a"} }},
	)
	req := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
	rw := httptest.NewRecorder()
	server.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	var summaries []serviceSummary
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	require.Equal(t, "s3", summaries[0].Name)
	require.Equal(t, 1, summaries[0].EntityCount)
	require.Equal(t, "sqs", summaries[1].Name)
	require.Equal(t, 2, summaries[1].EntityCount)
}

func Test_Server_ServiceEntities(t *testing.T) {
	server := NewServer(Source{Name: "sqs", Entities: func() []any { return []any{"queue-a"} }})

	found := httptest.NewRequest(http.MethodGet, "/admin/service/sqs/entities", nil)
	foundRW := httptest.NewRecorder()
	server.ServeHTTP(foundRW, found)
	require.Equal(t, http.StatusOK, foundRW.Code)
	require.Contains(t, foundRW.Body.String(), "queue-a")

	missing := httptest.NewRequest(http.MethodGet, "/admin/service/unknown/entities", nil)
	missingRW := httptest.NewRecorder()
	server.ServeHTTP(missingRW, missing)
	require.Equal(t, http.StatusNotFound, missingRW.Code)
}
