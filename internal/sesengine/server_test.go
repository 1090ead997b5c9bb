package sesengine

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

func Test_Server_CreateEmailIdentity_thenGet(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	create := doRest(t, server, http.MethodPost, "/v2/email/identities", map[string]any{"EmailIdentity": "orders@example.com"})
	require.Equal(t, http.StatusOK, create.Code)
	require.Contains(t, create.Body.String(), "EMAIL_ADDRESS")

	get := doRest(t, server, http.MethodGet, "/v2/email/identities/orders@example.com", nil)
	require.Equal(t, http.StatusOK, get.Code)
}

func Test_Server_SendEmail(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	doRest(t, server, http.MethodPost, "/v2/email/identities", map[string]any{"EmailIdentity": "orders@example.com"})
	send := doRest(t, server, http.MethodPost, "/v2/email/outbound-emails", map[string]any{
		"FromEmailAddress": "orders@example.com",
		"Destination":      map[string]any{"ToAddresses": []string{"customer@example.com"}},
		"Content": map[string]any{
			"Simple": map[string]any{
				"Subject": map[string]any{"Data": "Your order shipped"},
				"Body":    map[string]any{"Text": map[string]any{"Data": "It is on the way."}},
			},
		},
	})
	require.Equal(t, http.StatusOK, send.Code)
	require.Contains(t, send.Body.String(), "MessageId")
	require.Len(t, server.Registry().SentEmails(), 1)
}

func Test_Server_DeleteEmailIdentity_thenGetNotFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	doRest(t, server, http.MethodPost, "/v2/email/identities", map[string]any{"EmailIdentity": "temp.example.com"})
	del := doRest(t, server, http.MethodDelete, "/v2/email/identities/temp.example.com", nil)
	require.Equal(t, http.StatusNoContent, del.Code)

	get := doRest(t, server, http.MethodGet, "/v2/email/identities/temp.example.com", nil)
	require.Equal(t, http.StatusNotFound, get.Code)
}
