package dynamodbengine

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

func Test_Server_CreateTable_thenDescribe(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())

	create := doJSON(t, server, "CreateTable", map[string]any{
		"TableName": "widgets",
		"KeySchema": []map[string]any{
			{"AttributeName": "id", "KeyType": "HASH"},
		},
		"AttributeDefinitions": []map[string]any{
			{"AttributeName": "id", "AttributeType": "S"},
		},
		"BillingMode": "PAY_PER_REQUEST",
	})
	require.Equal(t, http.StatusOK, create.Code)
	require.Contains(t, create.Body.String(), `"TableStatus":"ACTIVE"`)

	describe := doJSON(t, server, "DescribeTable", map[string]any{"TableName": "widgets"})
	require.Equal(t, http.StatusOK, describe.Code)
	require.Contains(t, describe.Body.String(), `"TableName":"widgets"`)
}

func Test_Server_CreateTable_duplicate(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	input := map[string]any{
		"TableName": "widgets",
		"KeySchema": []map[string]any{
			{"AttributeName": "id", "KeyType": "HASH"},
		},
		"AttributeDefinitions": []map[string]any{
			{"AttributeName": "id", "AttributeType": "S"},
		},
	}
	first := doJSON(t, server, "CreateTable", input)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, server, "CreateTable", input)
	require.Equal(t, http.StatusBadRequest, second.Code)
	require.Contains(t, second.Body.String(), "ResourceInUseException")
}

func Test_Server_PutItem_GetItem_DeleteItem(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	doJSON(t, server, "CreateTable", map[string]any{
		"TableName": "widgets",
		"KeySchema": []map[string]any{
			{"AttributeName": "id", "KeyType": "HASH"},
		},
		"AttributeDefinitions": []map[string]any{
			{"AttributeName": "id", "AttributeType": "S"},
		},
	})

	put := doJSON(t, server, "PutItem", map[string]any{
		"TableName": "widgets",
		"Item": map[string]any{
			"id":   map[string]any{"S": "w-1"},
			"name": map[string]any{"S": "gizmo"},
		},
	})
	require.Equal(t, http.StatusOK, put.Code)

	get := doJSON(t, server, "GetItem", map[string]any{
		"TableName": "widgets",
		"Key": map[string]any{
			"id": map[string]any{"S": "w-1"},
		},
	})
	require.Equal(t, http.StatusOK, get.Code)
	require.Contains(t, get.Body.String(), "gizmo")

	del := doJSON(t, server, "DeleteItem", map[string]any{
		"TableName": "widgets",
		"Key": map[string]any{
			"id": map[string]any{"S": "w-1"},
		},
	})
	require.Equal(t, http.StatusOK, del.Code)

	getAfter := doJSON(t, server, "GetItem", map[string]any{
		"TableName": "widgets",
		"Key": map[string]any{
			"id": map[string]any{"S": "w-1"},
		},
	})
	require.Equal(t, http.StatusOK, getAfter.Code)
	require.Equal(t, `{"Item":null}`, getAfter.Body.String())
}

func Test_Server_UpdateItem_setAndRemove(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	doJSON(t, server, "CreateTable", map[string]any{
		"TableName": "widgets",
		"KeySchema": []map[string]any{
			{"AttributeName": "id", "KeyType": "HASH"},
		},
		"AttributeDefinitions": []map[string]any{
			{"AttributeName": "id", "AttributeType": "S"},
		},
	})
	doJSON(t, server, "PutItem", map[string]any{
		"TableName": "widgets",
		"Item": map[string]any{
			"id":    map[string]any{"S": "w-1"},
			"color": map[string]any{"S": "red"},
		},
	})

	update := doJSON(t, server, "UpdateItem", map[string]any{
		"TableName": "widgets",
		"Key": map[string]any{
			"id": map[string]any{"S": "w-1"},
		},
		"UpdateExpression": "SET size = :s REMOVE color",
		"ExpressionAttributeValues": map[string]any{
			":s": map[string]any{"S": "large"},
		},
		"ReturnValues": "ALL_NEW",
	})
	require.Equal(t, http.StatusOK, update.Code)
	require.Contains(t, update.Body.String(), "large")
	require.NotContains(t, update.Body.String(), "red")
}

func Test_Server_DescribeTable_notFound(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	resp := doJSON(t, server, "DescribeTable", map[string]any{"TableName": "missing"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "ResourceNotFoundException")
}

func Test_Server_ListTables_pagination(t *testing.T) {
	server := NewServer(clockwork.NewFakeClock())
	for _, name := range []string{"a", "b", "c"} {
		doJSON(t, server, "CreateTable", map[string]any{
			"TableName": name,
			"KeySchema": []map[string]any{
				{"AttributeName": "id", "KeyType": "HASH"},
			},
			"AttributeDefinitions": []map[string]any{
				{"AttributeName": "id", "AttributeType": "S"},
			},
		})
	}
	resp := doJSON(t, server, "ListTables", map[string]any{"Limit": 2})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"LastEvaluatedTableName":"b"`)
}
