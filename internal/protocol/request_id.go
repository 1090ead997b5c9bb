package protocol

import "awslite/internal/uuid"

// NewRequestID returns an opaque request id for ResponseMetadata/x-amzn-RequestId
// style fields, the same way every AWS response embeds a per-request id
// regardless of envelope.
func NewRequestID() string {
	return uuid.V4().String()
}
