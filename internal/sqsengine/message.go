package sqsengine

import (
	"awslite/internal/uuid"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func NewMessageFromSendMessageInput(input *sqs.SendMessageInput) Message {
	msg := Message{
		MessageID:              uuid.V4(),
		Body:                   SomePtr(input.MessageBody),
		MD5OfBody:              Some(md5sum(safeDeref(input.MessageBody))),
		Attributes:             make(map[string]string),
		MessageAttributes:      input.MessageAttributes,
		MessageGroupID:         safeDeref(input.MessageGroupId),
		MessageDeduplicationID: safeDeref(input.MessageDeduplicationId),
	}
	if len(input.MessageAttributes) > 0 {
		msg.MD5OfMessageAttributes = Some(md5OfMessageAttributes(input.MessageAttributes))
	}
	return msg
}

func NewMessageFromSendMessageBatchEntry(input types.SendMessageBatchRequestEntry) Message {
	msg := Message{
		ID:                     safeDeref(input.Id),
		MessageID:              uuid.V4(),
		Body:                   SomePtr(input.MessageBody),
		MD5OfBody:              Some(md5sum(safeDeref(input.MessageBody))),
		Attributes:             make(map[string]string),
		MessageAttributes:      input.MessageAttributes,
		MessageGroupID:         safeDeref(input.MessageGroupId),
		MessageDeduplicationID: safeDeref(input.MessageDeduplicationId),
	}
	if len(input.MessageAttributes) > 0 {
		msg.MD5OfMessageAttributes = Some(md5OfMessageAttributes(input.MessageAttributes))
	}
	return msg
}

// Message is the immutable body and attributes of a message as it was sent.
type Message struct {
	MessageID               uuid.UUID
	ID                      string
	ReceiptHandle           Optional[string]
	MD5OfBody               Optional[string]
	Body                    Optional[string]
	Attributes              map[string]string                      `json:"Attributes,omitempty"`
	MessageAttributes       map[string]types.MessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageSystemAttributes map[string]types.MessageAttributeValue `json:"MessageSystemAttributes,omitempty"`
	MD5OfMessageAttributes  Optional[string]

	// MessageGroupID and MessageDeduplicationID are only meaningful for fifo queues.
	MessageGroupID         string
	MessageDeduplicationID string
}

