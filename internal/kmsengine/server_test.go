package kmsengine

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

func Test_Server_CreateKey_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateKey", map[string]any{"Description": "test key"})
	require.Equal(t, http.StatusOK, create.Code)

	var createOut struct {
		KeyMetadata struct {
			KeyId string
			Arn   string
		}
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &createOut))
	require.NotEmpty(t, createOut.KeyMetadata.KeyId)

	describe := doJSON(t, server, "DescribeKey", map[string]any{"KeyId": createOut.KeyMetadata.KeyId})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), "test key")
}

func Test_Server_Encrypt_Decrypt_roundTrip(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateKey", map[string]any{})
	var createOut struct {
		KeyMetadata struct{ KeyId string }
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &createOut))

	encrypt := doJSON(t, server, "Encrypt", map[string]any{
		"KeyId":     createOut.KeyMetadata.KeyId,
		"Plaintext": []byte("secret value"),
	})
	require.Equal(t, http.StatusOK, encrypt.Code)
	var encryptOut struct{ CiphertextBlob []byte }
	require.NoError(t, json.Unmarshal(encrypt.Body.Bytes(), &encryptOut))

	decrypt := doJSON(t, server, "Decrypt", map[string]any{"CiphertextBlob": encryptOut.CiphertextBlob})
	require.Equal(t, http.StatusOK, decrypt.Code)
	// Plaintext is a blob, so it is base64-encoded on the wire.
	require.Contains(t, decrypt.Body.String(), "c2VjcmV0IHZhbHVl")
}

func Test_Server_Decrypt_invalidCiphertext(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "Decrypt", map[string]any{"CiphertextBlob": []byte("not-valid-base64-of-key-plaintext")})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "InvalidCiphertextException")
}

func Test_Server_CreateAlias_resolvesOnEncrypt(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateKey", map[string]any{})
	var createOut struct {
		KeyMetadata struct{ KeyId string }
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &createOut))

	alias := doJSON(t, server, "CreateAlias", map[string]any{
		"AliasName":   "alias/my-key",
		"TargetKeyId": createOut.KeyMetadata.KeyId,
	})
	require.Equal(t, http.StatusOK, alias.Code)

	describe := doJSON(t, server, "DescribeKey", map[string]any{"KeyId": "alias/my-key"})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), createOut.KeyMetadata.KeyId)
}

func Test_Server_ScheduleKeyDeletion_thenCancel(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	create := doJSON(t, server, "CreateKey", map[string]any{})
	var createOut struct {
		KeyMetadata struct{ KeyId string }
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &createOut))

	schedule := doJSON(t, server, "ScheduleKeyDeletion", map[string]any{"KeyId": createOut.KeyMetadata.KeyId})
	require.Equal(t, http.StatusOK, schedule.Code)

	describe := doJSON(t, server, "DescribeKey", map[string]any{"KeyId": createOut.KeyMetadata.KeyId})
	require.Contains(t, describe.Body.String(), "PendingDeletion")

	cancel := doJSON(t, server, "CancelKeyDeletion", map[string]any{"KeyId": createOut.KeyMetadata.KeyId})
	require.Equal(t, http.StatusOK, cancel.Code)
}

func Test_Server_DescribeKey_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock(), "us-east-1", "000000000000")
	resp := doJSON(t, server, "DescribeKey", map[string]any{"KeyId": "does-not-exist"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "NotFoundException")
}
