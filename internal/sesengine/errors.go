package sesengine

import (
	"net/http"

	"awslite/internal/protocol"
)

func ErrorNotFound(message string) *protocol.RestError {
	return protocol.NewRestError(http.StatusNotFound, "NotFoundException", message)
}
