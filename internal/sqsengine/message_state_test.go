package sqsengine

import (
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func Test_NewMessageStateFromSendMessageInput(t *testing.T) {
	q := createTestQueue(t, clockwork.NewFakeClock())

	msgInput := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.URL),
		MessageBody: aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"test-key": {
				DataType:    aws.String("String"),
				StringValue: aws.String("test-value"),
			},
		},
		DelaySeconds: 10,
	}

	msg := q.NewMessageStateFromSendMessageInput(msgInput)
	require.Equal(t, `{"message_index":1}`, msg.Message.Body.Value)
	require.NotEmpty(t, msg.Message.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.Message.MD5OfBody.Value)
	require.True(t, msg.Message.MD5OfMessageAttributes.IsSet)
	require.Equal(t, 10*time.Second, msg.Delay.Value)
}

func Test_NewMessageStateFromSendMessageInput_noAttributes(t *testing.T) {
	q := createTestQueue(t, clockwork.NewFakeClock())

	msgInput := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.URL),
		MessageBody: aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
	}

	msg := q.NewMessageStateFromSendMessageInput(msgInput)
	require.Equal(t, `{"message_index":1}`, msg.Message.Body.Value)
	require.Empty(t, msg.Message.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.Message.MD5OfBody.Value)
	require.False(t, msg.Message.MD5OfMessageAttributes.IsSet)
}

func Test_NewMessageStateFromSendMessageBatchEntry(t *testing.T) {
	q := createTestQueue(t, clockwork.NewFakeClock())

	entry := types.SendMessageBatchRequestEntry{
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
	msg, err := q.NewMessageState(NewMessageFromSendMessageBatchEntry(entry), q.clock.Now(), int(entry.DelaySeconds))
	require.Nil(t, err)
	require.Equal(t, "test-message-id", msg.Message.ID)
	require.Equal(t, `{"message_index":1}`, msg.Message.Body.Value)
	require.NotEmpty(t, msg.Message.MessageAttributes)
	require.EqualValues(t, "4504dd781f625d681c31cda87e260702", msg.Message.MD5OfBody.Value)
	require.True(t, msg.Message.MD5OfMessageAttributes.IsSet)
}

func Test_NewMessageFromSendMessageBatchEntry_noAttributes(t *testing.T) {
	q := createTestQueue(t, clockwork.NewFakeClock())

	entry := types.SendMessageBatchRequestEntry{
		Id:           aws.String("test-message-id"),
		MessageBody:  aws.String(fmt.Sprintf(`{"message_index":%d}`, 1)),
		DelaySeconds: 10,
	}
	msg, err := q.NewMessageState(NewMessageFromSendMessageBatchEntry(entry), q.clock.Now(), int(entry.DelaySeconds))
	require.Nil(t, err)
	require.Equal(t, "test-message-id", msg.Message.ID)
	require.Equal(t, `{"message_index":1}`, msg.Message.Body.Value)
	require.Empty(t, msg.Message.MessageAttributes)
	require.False(t, msg.Message.MD5OfMessageAttributes.IsSet)
}

func Test_MessageState_IsVisible(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := createTestQueue(t, clock)
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))

	require.True(t, msg.IsVisible(clock.Now()))
	msg.UpdateVisibilityTimeout(30*time.Second, clock.Now())
	require.False(t, msg.IsVisible(clock.Now()))
	require.True(t, msg.IsVisible(clock.Now().Add(31*time.Second)))
}

func Test_MessageState_IsDelayed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := createTestQueue(t, clock)
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))
	msg.Delay = Some(10 * time.Second)
	msg.Created = clock.Now()

	require.True(t, msg.IsDelayed(clock.Now()))
	require.False(t, msg.IsDelayed(clock.Now().Add(11*time.Second)))
}

func Test_MessageState_IsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := createTestQueue(t, clock)
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))
	msg.MessageRetentionPeriod = time.Minute
	msg.Created = clock.Now()

	require.False(t, msg.IsExpired(clock.Now()))
	require.True(t, msg.IsExpired(clock.Now().Add(2*time.Minute)))
}

func Test_MessageState_IncrementApproximateReceiveCount(t *testing.T) {
	q := createTestQueue(t, clockwork.NewFakeClock())
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))

	require.EqualValues(t, 1, msg.IncrementApproximateReceiveCount())
	require.EqualValues(t, 2, msg.IncrementApproximateReceiveCount())
	require.EqualValues(t, 2, msg.ReceiveCount)
}

func Test_MessageState_SetLastReceived(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := createTestQueue(t, clock)
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))
	msg.VisibilityTimeout = 30 * time.Second

	msg.SetLastReceived(clock.Now())
	require.True(t, msg.LastReceived.IsSet)
	require.Equal(t, clock.Now().Add(30*time.Second), msg.VisibilityDeadline.Value)
}

func Test_MessageState_MaybeSetFirstReceived(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := createTestQueue(t, clock)
	msg := q.NewMessageStateFromSendMessageInput(createTestSendMessageInput("test body"))

	msg.MaybeSetFirstReceived(clock.Now())
	first := msg.FirstReceived.Value
	msg.MaybeSetFirstReceived(clock.Now().Add(time.Minute))
	require.Equal(t, first, msg.FirstReceived.Value)
}
