package sqsengine

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_Server_receiveMessage_equalMaxNumberOfMessages(t *testing.T) {
	server, testServer := startTestServer(t)
	for range 5 {
		_ = testHelperSendMessage(t, testServer, testNewSendMessageInput(testDefaultQueueURL))
	}
	queue, ok := server.accounts.EnsureQueues(testAccountID).GetQueue(testDefaultQueueURL)
	require.True(t, ok)
	require.Equal(t, int64(5), queue.Stats().NumMessages)

	received := testHelperReceiveMessages(t, testServer, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(testDefaultQueueURL),
		MaxNumberOfMessages: 5,
	})
	require.Len(t, received.Messages, 5)
}

func Test_Server_receiveMessage_belowMaxNumberOfMessages(t *testing.T) {
	server, testServer := startTestServer(t)
	for range 2 {
		_ = testHelperSendMessage(t, testServer, testNewSendMessageInput(testDefaultQueueURL))
	}
	queue, ok := server.accounts.EnsureQueues(testAccountID).GetQueue(testDefaultQueueURL)
	require.True(t, ok)
	require.Equal(t, int64(2), queue.Stats().NumMessages)

	received := testHelperReceiveMessages(t, testServer, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(testDefaultQueueURL),
		MaxNumberOfMessages: 5,
	})
	require.Len(t, received.Messages, 2)
}

func Test_Server_receiveMessage_awaitsMessages(t *testing.T) {
	server, testServer := startTestServer(t)
	defaultQueue, ok := server.accounts.EnsureQueues(testAccountID).GetQueue(testDefaultQueueURL)
	require.True(t, ok)
	serverClock, _ := server.Clock().(*clockwork.FakeClock)
	startedReceiveRequest := make(chan struct{})
	completedReceiveRequest := make(chan struct{})
	go func() {
		close(startedReceiveRequest)
		defer close(completedReceiveRequest)
		received := testHelperReceiveMessages(t, testServer, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(testDefaultQueueURL),
			MaxNumberOfMessages: 5,
		})
		require.True(t, len(received.Messages) > 0)
	}()
	<-startedReceiveRequest
	for range 2 {
		_ = testHelperSendMessage(t, testServer, testNewSendMessageInput(testDefaultQueueURL))
	}
	serverClock.Advance(200 * time.Millisecond)
	<-completedReceiveRequest
	require.Equal(t, int64(2), defaultQueue.Stats().NumMessages)
	require.True(t, defaultQueue.Stats().NumMessagesInflight > 0)
}
