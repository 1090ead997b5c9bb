package sqsengine

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/require"
)

func Test_NewMessageFromSendMessageInput(t *testing.T) {
	msgInput := &sqs.SendMessageInput{
		QueueUrl:    aws.String("https://sqslite.local/sqslite-test-account/test-queue"),
		MessageBody: aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"test-key": {
				DataType:    aws.String("String"),
				StringValue: aws.String("test-value"),
			},
		},
		DelaySeconds: 10,
	}

	msg := NewMessageFromSendMessageInput(msgInput)
	require.Equal(t, `{"message_index":1}`, msg.Body.Value)
	require.NotEmpty(t, msg.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.MD5OfBody.Value)
	require.EqualValues(t, "befa18540a897f7d022bf07057754a03", msg.MD5OfMessageAttributes.Value)
}

func Test_NewMessageFromSendMessageInput_noAttributes(t *testing.T) {
	msgInput := &sqs.SendMessageInput{
		QueueUrl:     aws.String("https://sqslite.local/sqslite-test-account/test-queue"),
		MessageBody:  aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		DelaySeconds: 10,
	}

	msg := NewMessageFromSendMessageInput(msgInput)
	require.Equal(t, `{"message_index":1}`, msg.Body.Value)
	require.Empty(t, msg.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.MD5OfBody.Value)
	require.False(t, msg.MD5OfMessageAttributes.IsSet)
}

func Test_NewMessageFromSendMessageBatchEntry(t *testing.T) {
	msgInput := types.SendMessageBatchRequestEntry{
		Id:          aws.String("test-message-id"),
		MessageBody: aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"test-key": {
				DataType:    aws.String("String"),
				StringValue: aws.String("test-value"),
			},
		},
		DelaySeconds: 10,
	}
	msg := NewMessageFromSendMessageBatchEntry(msgInput)
	require.Equal(t, "test-message-id", msg.ID)
	require.Equal(t, `{"message_index":1}`, msg.Body.Value)
	require.NotEmpty(t, msg.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.MD5OfBody.Value)
	require.EqualValues(t, "befa18540a897f7d022bf07057754a03", msg.MD5OfMessageAttributes.Value)
}

func Test_NewMessageFromSendMessageBatchEntry_noAttributes(t *testing.T) {
	msgInput := types.SendMessageBatchRequestEntry{
		Id:           aws.String("test-message-id"),
		MessageBody:  aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		DelaySeconds: 10,
	}
	msg := NewMessageFromSendMessageBatchEntry(msgInput)
	require.Equal(t, "test-message-id", msg.ID)
	require.Equal(t, `{"message_index":1}`, msg.Body.Value)
	require.Empty(t, msg.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.MD5OfBody.Value)
	require.False(t, msg.MD5OfMessageAttributes.IsSet)
}
