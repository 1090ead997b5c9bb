package sqsengine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/uuid"
)

const DefaultQueueShardCount = 1

// NewQueueFromCreateQueueInput returns a new queue for a given [sqs.CreateQueueInput].
func NewQueueFromCreateQueueInput(clock clockwork.Clock, authz Authorization, input *sqs.CreateQueueInput) (*Queue, *Error) {
	if err := validateQueueName(*input.QueueName); err != nil {
		return nil, err
	}
	isFIFO := strings.HasSuffix(*input.QueueName, ".fifo")
	shardCount := DefaultQueueShardCount
	if isFIFO {
		// a single shard per group preserves strict insertion order within the group.
		shardCount = 1
	}
	now := clock.Now()
	queue := &Queue{
		Name:                            safeDeref(input.QueueName),
		AccountID:                       authz.AccountID,
		URL:                             FormatQueueURL(authz, *input.QueueName),
		ARN:                             FormatQueueARN(authz, *input.QueueName),
		FIFO:                            isFIFO,
		clock:                           clock,
		created:                         now,
		lastModified:                    now,
		messagesReadyOrdered:            NewGroupedShardedLinkedList[string, *MessageState](shardCount),
		messagesDelayed:                 make(map[uuid.UUID]*MessageState),
		messagesInflight:                newGroupedInflightMessages(),
		dlqSources:                      make(map[string]*Queue),
		dedupSeen:                       make(map[string]dedupEntry),
		MaximumMessagesInflight: 120000,
		Attributes:                      input.Attributes,
		Tags:                            input.Tags,
	}
	if err := queue.applyQueueAttributesUnsafe(input.Attributes, true /*applyDefaults*/); err != nil {
		return nil, err
	}
	return queue, nil
}

// FormatQueueURL creates a queue url from required inputs.
func FormatQueueURL(authz Authorization, queueName string) string {
	return fmt.Sprintf("http://%s/%s/%s", authz.HostOrDefault(), authz.AccountID, queueName)
}

// FormatQueueARN creates a queue arn from required inputs.
func FormatQueueARN(authz Authorization, queueName string) string {
	return fmt.Sprintf("arn:aws:sqs:%s:%s:%s", authz.RegionOrDefault(), authz.AccountID, queueName)
}

// Queue is an individual queue.
type Queue struct {
	Name      string
	AccountID string
	URL       string
	ARN       string
	FIFO      bool

	RedrivePolicy             Optional[RedrivePolicy]
	RedriveAllowPolicy        Optional[RedriveAllowPolicy]
	ContentBasedDeduplication bool
	DeduplicationScope        string // "queue" (default) or "messageGroup"

	VisibilityTimeout               time.Duration
	ReceiveMessageWaitTime          time.Duration
	MaximumMessageSizeBytes         int
	MessageRetentionPeriod          time.Duration
	Delay                           Optional[time.Duration]
	MaximumMessagesInflight int

	Policy Optional[any]

	Attributes map[string]string
	Tags       map[string]string

	clock clockwork.Clock

	created      time.Time
	lastModified time.Time
	deleted      time.Time

	lifecycleMu sync.Mutex
	mu          sync.Mutex

	isDLQ      uint32
	dlqTarget  *Queue
	dlqSources map[string]*Queue

	messagesReadyOrdered *GroupedShardedLinkedList[string, *MessageState]
	messagesDelayed      map[uuid.UUID]*MessageState
	messagesInflight     *groupedInflightMessages

	// dedupSeen tracks fifo dedup keys to the original message state they
	// matched, lazily purged after FIFODeduplicationWindow.
	dedupSeen map[string]dedupEntry
	sequence  uint64

	retentionWorker        *retentionWorker
	retentionWorkerCancel  func()
	visibilityWorker       *visibilityWorker
	visibilityWorkerCancel func()
	delayWorker            *delayWorker
	delayWorkerCancel      func()

	stats QueueStats
}

func (q *Queue) Stats() (output QueueStats) {
	output.NumMessages = atomic.LoadInt64(&q.stats.NumMessages)
	output.NumMessagesReady = atomic.LoadInt64(&q.stats.NumMessagesReady)
	output.NumMessagesDelayed = atomic.LoadInt64(&q.stats.NumMessagesDelayed)
	output.NumMessagesInflight = atomic.LoadInt64(&q.stats.NumMessagesInflight)
	output.TotalMessagesSent = atomic.LoadUint64(&q.stats.TotalMessagesSent)
	output.TotalMessagesReceived = atomic.LoadUint64(&q.stats.TotalMessagesReceived)
	output.TotalMessagesMoved = atomic.LoadUint64(&q.stats.TotalMessagesMoved)
	output.TotalMessagesDeleted = atomic.LoadUint64(&q.stats.TotalMessagesDeleted)
	output.TotalMessagesChangedVisibility = atomic.LoadUint64(&q.stats.TotalMessagesChangedVisibility)
	output.TotalMessagesPurged = atomic.LoadUint64(&q.stats.TotalMessagesPurged)
	output.TotalMessagesInflightToReady = atomic.LoadUint64(&q.stats.TotalMessagesInflightToReady)
	output.TotalMessagesDelayedToReady = atomic.LoadUint64(&q.stats.TotalMessagesDelayedToReady)
	output.TotalMessagesInflightToDLQ = atomic.LoadUint64(&q.stats.TotalMessagesInflightToDLQ)
	return
}

// HotMessageGroups returns FIFO message group ids currently seeing an
// outsized share of inflight messages, for operability logging. Always
// empty for standard queues.
func (q *Queue) HotMessageGroups() []string {
	if !q.FIFO {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.messagesInflight.HotGroups()
}

// Created returns the timestamp when the queue was instantiated with [NewQueueFromCreateQueueInput].
func (q *Queue) Created() time.Time {
	return q.created
}

// LastModified returns the timestamp when the queue was created or last updated with [Queue.SetQueueAttributes].
func (q *Queue) LastModified() time.Time {
	return q.lastModified
}

// Deleted returns the deleted timestamp.
func (q *Queue) Deleted() time.Time {
	return q.deleted
}

// IsDeleted returns if the queue has been deleted and is waiting to be purged.
func (q *Queue) IsDeleted() bool {
	return !q.deleted.IsZero()
}

// MarkDeleted stamps the deleted timestamp so the retention worker knows to purge it later.
func (q *Queue) MarkDeleted(timestamp time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = timestamp
}

func (q *Queue) Start(ctx context.Context) {
	q.lifecycleMu.Lock()
	defer q.lifecycleMu.Unlock()

	retentionCtx, retentionCancel := context.WithCancel(ctx)
	q.retentionWorkerCancel = retentionCancel
	q.retentionWorker = &retentionWorker{queue: q, clock: q.clock}
	go q.retentionWorker.Start(retentionCtx)

	visibilityCtx, visibilityCancel := context.WithCancel(ctx)
	q.visibilityWorkerCancel = visibilityCancel
	q.visibilityWorker = &visibilityWorker{queue: q, clock: q.clock}
	go q.visibilityWorker.Start(visibilityCtx)

	delayCtx, delayCancel := context.WithCancel(ctx)
	q.delayWorkerCancel = delayCancel
	q.delayWorker = &delayWorker{queue: q, clock: q.clock}
	go q.delayWorker.Start(delayCtx)
}

func (q *Queue) Close() {
	q.lifecycleMu.Lock()
	defer q.lifecycleMu.Unlock()
	if q.retentionWorkerCancel != nil {
		q.retentionWorkerCancel()
		q.retentionWorkerCancel = nil
		q.retentionWorker = nil
	}
	if q.delayWorkerCancel != nil {
		q.delayWorkerCancel()
		q.delayWorkerCancel = nil
		q.delayWorker = nil
	}
	if q.visibilityWorkerCancel != nil {
		q.visibilityWorkerCancel()
		q.visibilityWorkerCancel = nil
		q.visibilityWorker = nil
	}
}

func (q *Queue) AddDLQSources(sources ...*Queue) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, queue := range sources {
		atomic.StoreUint32(&q.isDLQ, 1)
		q.dlqSources[queue.URL] = queue
	}
}

func (q *Queue) RemoveDLQSource(queueURL string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.dlqSources, queueURL)
	if len(q.dlqSources) == 0 {
		atomic.StoreUint32(&q.isDLQ, 0)
	}
}

// IsDLQ indicates if a queue is a dlq.
func (q *Queue) IsDLQ() bool {
	return atomic.LoadUint32(&q.isDLQ) == 1
}

// DLQSourceURLs returns the URLs of every queue configured to redrive
// into this one.
func (q *Queue) DLQSourceURLs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	urls := make([]string, 0, len(q.dlqSources))
	for url := range q.dlqSources {
		urls = append(urls, url)
	}
	return urls
}

// TagsSnapshot returns a copy of the queue's current tags.
func (q *Queue) TagsSnapshot() map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]string, len(q.Tags))
	maps.Copy(out, q.Tags)
	return out
}

func (q *Queue) Tag(tags map[string]string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Tags == nil {
		q.Tags = make(map[string]string)
	}
	maps.Copy(q.Tags, tags)
}

func (q *Queue) Untag(tags []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, key := range tags {
		delete(q.Tags, key)
	}
}

func (q *Queue) SetQueueAttributes(attributes map[string]string) *Error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.applyQueueAttributesUnsafe(attributes, false /*applyDefaults*/)
}

// dedupEntry is a lazily-purged fifo dedup cache entry; Skip marks that
// the matching NewMessageState call should not actually enqueue anything,
// since it was a duplicate of an already-seen message.
type dedupEntry struct {
	state  *MessageState
	expiry time.Time
}

// NewMessageStateFromSendMessageInput is a convenience wrapper around
// [Queue.NewMessageState] for tests and callers that already have a raw
// [sqs.SendMessageInput]; validation errors are discarded.
func (q *Queue) NewMessageStateFromSendMessageInput(input *sqs.SendMessageInput) *MessageState {
	msgState, _ := q.NewMessageState(NewMessageFromSendMessageInput(input), q.clock.Now(), int(input.DelaySeconds))
	return msgState
}

// NewMessageState validates and constructs a [MessageState] for a message
// about to be sent to this queue, including fifo group/dedup validation.
// When the message is a fifo duplicate within the dedup window, it returns
// the original [MessageState] with Skip set so the caller can still answer
// the API call without enqueueing the message a second time.
func (q *Queue) NewMessageState(msg Message, now time.Time, delaySeconds int) (*MessageState, *Error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.FIFO {
		if err := validateMessageGroupID(msg.MessageGroupID); err != nil {
			return nil, err
		}
		if err := validateMessageDeduplicationID(msg.MessageDeduplicationID); err != nil {
			return nil, err
		}
		dedupID := msg.MessageDeduplicationID
		if dedupID == "" {
			if !q.ContentBasedDeduplication {
				return nil, ErrorInvalidParameterValueException().WithMessage("The queue should either have ContentBasedDeduplication enabled or MessageDeduplicationId provided explicitly")
			}
			dedupID = sha256Hex(safeDeref(msg.Body.Ptr()))
			msg.MessageDeduplicationID = dedupID
		}
		q.purgeDedupUnsafe(now)
		if existing, ok := q.dedupSeen[q.dedupKeyUnsafe(msg.MessageGroupID, dedupID)]; ok {
			duplicate := *existing.state
			duplicate.Skip = true
			return &duplicate, nil
		}
	}

	state := &MessageState{
		MessageID:              msg.MessageID,
		Message:                msg,
		Created:                now,
		MessageRetentionPeriod: q.MessageRetentionPeriod,
		ReceiptHandles:         NewSafeSet[string](),
		MessageGroupID:         msg.MessageGroupID,
		MessageDeduplicationID: msg.MessageDeduplicationID,
		OriginalSourceQueue:    q,
	}
	if delaySeconds > 0 {
		state.Delay = Some(time.Duration(delaySeconds) * time.Second)
	}
	if q.FIFO {
		state.SequenceNumber = atomic.AddUint64(&q.sequence, 1)
		q.dedupSeen[q.dedupKeyUnsafe(msg.MessageGroupID, msg.MessageDeduplicationID)] = dedupEntry{
			state:  state,
			expiry: now.Add(FIFODeduplicationWindow),
		}
	}
	return state, nil
}

func (q *Queue) dedupKeyUnsafe(groupID, dedupID string) string {
	if q.DeduplicationScope == "messageGroup" {
		return groupID + "\x00" + dedupID
	}
	return dedupID
}

func (q *Queue) purgeDedupUnsafe(now time.Time) {
	for key, entry := range q.dedupSeen {
		if now.After(entry.expiry) {
			delete(q.dedupSeen, key)
		}
	}
}

func sha256Hex(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func (q *Queue) Push(msgs ...*MessageState) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	for _, m := range msgs {
		if m.Skip {
			continue
		}
		// only apply the queue level default if
		// - it's set
		// - the message does not specify a delay
		if q.Delay.IsSet && m.Delay.IsZero() {
			m.Delay = q.Delay
		}
		atomic.AddUint64(&q.stats.TotalMessagesSent, 1)
		atomic.AddInt64(&q.stats.NumMessages, 1)
		if m.IsDelayed(now) {
			atomic.AddInt64(&q.stats.NumMessagesDelayed, 1)
			q.messagesDelayed[m.MessageID] = m
			continue
		}
		atomic.AddInt64(&q.stats.NumMessagesReady, 1)
		_ = q.messagesReadyOrdered.Push(m.MessageGroupID, m)
	}
}

// Receive pops up to maxNumberOfMessages ready messages and moves them to
// the inflight set, honoring per-group inflight caps for fifo queues.
func (q *Queue) Receive(maxNumberOfMessages int, visibilityTimeout time.Duration) (output []Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	validMessageGroups := q.candidateReadyGroupsUnsafe()
	if len(validMessageGroups) == 0 {
		return
	}

	if visibilityTimeout == 0 {
		visibilityTimeout = q.VisibilityTimeout
	}
	maxNumberOfMessages = coalesceZero(maxNumberOfMessages, 1)

	for {
		// pop removes the message from the "readiness" state
		// but only if it belongs to a valid group (a group that has
		// fewer than ~120k outstanding messages)
		_, msg, ok := q.messagesReadyOrdered.Pop(validMessageGroups...)
		if !ok {
			break
		}

		atomic.AddUint64(&q.stats.TotalMessagesReceived, 1)
		atomic.AddInt64(&q.stats.NumMessagesReady, -1)
		atomic.AddInt64(&q.stats.NumMessagesInflight, 1)

		now := q.clock.Now()
		msg.MaybeSetFirstReceived(now)
		msg.IncrementApproximateReceiveCount()
		msg.UpdateVisibilityTimeout(visibilityTimeout, now)
		msg.SetLastReceived(now)

		receiptHandle := ReceiptHandle{
			ID:           uuid.V4(),
			QueueARN:     q.ARN,
			MessageID:    msg.MessageID.String(),
			LastReceived: now,
		}
		handle := receiptHandle.String()
		msg.ReceiptHandles.Add(handle)
		q.messagesInflight.Push(handle, msg)

		attrs := map[string]string{
			MessageAttributeApproximateReceiveCount: fmt.Sprint(msg.ReceiveCount),
			MessageAttributeSentTimestamp:            fmt.Sprint(msg.Created.UnixMilli()),
		}
		if msg.FirstReceived.IsSet {
			attrs[MessageAttributeApproximateFirstReceiveTimestamp] = fmt.Sprint(msg.FirstReceived.Value.UnixMilli())
		}
		if msg.MessageGroupID != "" {
			attrs[MessageAttributeMessageGroupID] = msg.MessageGroupID
			attrs[MessageAttributeSequenceNumber] = fmt.Sprint(msg.SequenceNumber)
			attrs[MessageAttributeMessageDeduplicationId] = msg.MessageDeduplicationID
		}
		out := msg.Message
		out.ReceiptHandle = Some(handle)
		out.Attributes = attrs
		output = append(output, out)

		if len(output) == maxNumberOfMessages {
			break
		}
		validMessageGroups = q.candidateReadyGroupsUnsafe()
		if len(validMessageGroups) == 0 {
			return
		}
	}
	return
}

// candidateReadyGroupsUnsafe returns the message group ids eligible to be
// received from: groups with at least one ready message that haven't hit
// the per-group inflight cap. Unlike messagesInflight's own bookkeeping,
// this also includes groups that have never had an inflight message.
func (q *Queue) candidateReadyGroupsUnsafe() (candidates []string) {
	groups := q.messagesReadyOrdered.GroupIDs()
	if len(groups) == 0 {
		return nil
	}
	candidates = make([]string, 0, len(groups))
	for _, group := range groups {
		if q.messagesInflight.GroupLen(group) < q.MaximumMessagesInflight {
			candidates = append(candidates, group)
		}
	}
	return
}

func (q *Queue) PopMessageForMove() (msg *MessageState, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, msg, ok = q.messagesReadyOrdered.Pop()
	if !ok {
		return
	}
	atomic.AddUint64(&q.stats.TotalMessagesMoved, 1)
	atomic.AddInt64(&q.stats.NumMessagesReady, -1)
	return
}

func (q *Queue) ChangeMessageVisibility(receiptHandle string, visibilityTimeout time.Duration) (ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var msg *MessageState
	msg, ok = q.messagesInflight.GetByReceiptHandle(receiptHandle)
	if !ok {
		return
	}
	now := q.clock.Now()
	atomic.AddUint64(&q.stats.TotalMessagesChangedVisibility, 1)
	msg.UpdateVisibilityTimeout(visibilityTimeout, now)
	if visibilityTimeout == 0 {
		q.moveMessageFromInflightUnsafe(msg)
	}
	return
}

func (q *Queue) ChangeMessageVisibilityBatch(entries []types.ChangeMessageVisibilityBatchRequestEntry) (successful []types.ChangeMessageVisibilityBatchResultEntry, failed []types.BatchResultErrorEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var readyMessages []*MessageState
	now := q.clock.Now()
	for _, entry := range entries {
		msg, ok := q.messagesInflight.GetByReceiptHandle(safeDeref(entry.ReceiptHandle))
		if !ok {
			failed = append(failed, types.BatchResultErrorEntry{
				Code:        aws.String("ReceiptHandleIsInvalid"),
				Id:          entry.Id,
				SenderFault: true,
			})
			continue
		}
		atomic.AddUint64(&q.stats.TotalMessagesChangedVisibility, 1)
		msg.UpdateVisibilityTimeout(time.Duration(entry.VisibilityTimeout)*time.Second, now)
		successful = append(successful, types.ChangeMessageVisibilityBatchResultEntry{
			Id: entry.Id,
		})
		if entry.VisibilityTimeout == 0 {
			readyMessages = append(readyMessages, msg)
		}
	}
	if len(readyMessages) > 0 {
		for _, msg := range readyMessages {
			q.moveMessageFromInflightUnsafe(msg)
		}
	}
	return
}

func (q *Queue) Delete(receiptHandle string) (ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ok = q.messagesInflight.RemoveByReceiptHandle(receiptHandle)
	if !ok {
		return
	}
	atomic.AddUint64(&q.stats.TotalMessagesDeleted, 1)
	atomic.AddInt64(&q.stats.NumMessagesInflight, -1)
	atomic.AddInt64(&q.stats.NumMessages, -1)
	return
}

func (q *Queue) DeleteBatch(entries []types.DeleteMessageBatchRequestEntry) (successful []types.DeleteMessageBatchResultEntry, failed []types.BatchResultErrorEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ok bool
	for _, entry := range entries {
		ok = q.messagesInflight.RemoveByReceiptHandle(safeDeref(entry.ReceiptHandle))
		if !ok {
			failed = append(failed, types.BatchResultErrorEntry{
				Code:        aws.String("InvalidParameterValue"),
				Id:          entry.Id,
				SenderFault: true,
				Message:     aws.String("ReceiptHandle not found"),
			})
			continue
		}
		atomic.AddUint64(&q.stats.TotalMessagesDeleted, 1)
		atomic.AddInt64(&q.stats.NumMessagesInflight, -1)
		atomic.AddInt64(&q.stats.NumMessages, -1)
		successful = append(successful, types.DeleteMessageBatchResultEntry{
			Id: entry.Id,
		})
	}
	return
}

func (q *Queue) Purge() {
	q.mu.Lock()
	defer q.mu.Unlock()

	shardCount := DefaultQueueShardCount
	if q.FIFO {
		shardCount = 1
	}
	q.messagesReadyOrdered = NewGroupedShardedLinkedList[string, *MessageState](shardCount)
	q.messagesInflight = newGroupedInflightMessages()
	clear(q.messagesDelayed)

	atomic.AddUint64(&q.stats.TotalMessagesPurged, uint64(atomic.LoadInt64(&q.stats.NumMessages)))
	atomic.StoreInt64(&q.stats.NumMessages, 0)
	atomic.StoreInt64(&q.stats.NumMessagesDelayed, 0)
	atomic.StoreInt64(&q.stats.NumMessagesInflight, 0)
	atomic.StoreInt64(&q.stats.NumMessagesReady, 0)
}

func (q *Queue) PurgeExpired(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	deleted := make(map[uuid.UUID]struct{})
	var toDeleteDelayed []uuid.UUID
	for _, msg := range q.messagesDelayed {
		if msg.IsExpired(now) {
			toDeleteDelayed = append(toDeleteDelayed, msg.MessageID)
		}
	}
	for _, id := range toDeleteDelayed {
		atomic.AddInt64(&q.stats.NumMessagesDelayed, -1)
		delete(q.messagesDelayed, id)
		deleted[id] = struct{}{}
	}
	var toDeleteOustanding []*MessageState
	for msg := range q.messagesInflight.Each() {
		if msg.IsExpired(now) {
			toDeleteOustanding = append(toDeleteOustanding, msg)
		}
	}
	for _, msg := range toDeleteOustanding {
		q.messagesInflight.Remove(msg)
		deleted[msg.MessageID] = struct{}{}
		atomic.AddInt64(&q.stats.NumMessagesInflight, -1)
	}
	var toDeleteNodes []*GroupedShardedLinkedListNode[string, *MessageState]
	for node := range q.messagesReadyOrdered.Each() {
		if node.ListNode.Value.IsExpired(now) {
			toDeleteNodes = append(toDeleteNodes, node)
		}
	}
	for _, node := range toDeleteNodes {
		q.messagesReadyOrdered.Remove(node)
		deleted[node.ListNode.Value.MessageID] = struct{}{}
		atomic.AddInt64(&q.stats.NumMessagesReady, -1)
	}
	atomic.AddUint64(&q.stats.TotalMessagesPurged, uint64(len(deleted)))
	atomic.AddInt64(&q.stats.NumMessages, -int64(len(deleted)))
}

// UpdateInflightVisibility returns messages that are currently
// in flight to the ready queue.
func (q *Queue) UpdateInflightVisibility(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ready []*MessageState
	for msg := range q.messagesInflight.Each() {
		if msg.IsVisible(now) {
			ready = append(ready, msg)
		}
	}
	for _, msg := range ready {
		q.moveMessageFromInflightUnsafe(msg)
	}
}

// UpdateDelayedToReady moves messages that were delayed to the ready queue.
func (q *Queue) UpdateDelayedToReady(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ready []*MessageState
	for _, msg := range q.messagesDelayed {
		if !msg.IsDelayed(now) {
			ready = append(ready, msg)
		}
	}
	for _, msg := range ready {
		q.moveMessageFromDelayedToReadyUnsafe(msg)
	}
}

// GetQueueAttributes gets queue attribute values for a given list of queue attribute names.
func (q *Queue) GetQueueAttributes(attributeNames ...types.QueueAttributeName) map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.getQueueAttributesUnsafe(attributeNames...)
}

//
// internal methods
//

func (q *Queue) moveMessageFromInflightUnsafe(msg *MessageState) {
	if q.RedrivePolicy.IsSet && q.dlqTarget != nil {
		if msg.ReceiveCount >= uint32(q.RedrivePolicy.Value.MaxReceiveCount) {
			q.moveMessageFromInflightToDLQUnsafe(msg)
			return
		}
	}
	q.moveMessageFromInflightToReadyUnsafe(msg)
}

func (q *Queue) moveMessageFromInflightToDLQUnsafe(msg *MessageState) {
	q.messagesInflight.Remove(msg)
	atomic.AddUint64(&q.stats.TotalMessagesInflightToDLQ, 1)
	atomic.AddInt64(&q.stats.NumMessagesInflight, -1)
	q.moveMessageToDLQUnsafe(msg)
}

func (q *Queue) moveMessageFromInflightToReadyUnsafe(msg *MessageState) {
	q.messagesInflight.Remove(msg)
	atomic.AddUint64(&q.stats.TotalMessagesInflightToReady, 1)
	atomic.AddInt64(&q.stats.NumMessagesInflight, -1)
	q.moveMessageToReadyUnsafe(msg)
}

func (q *Queue) moveMessageFromDelayedToReadyUnsafe(msg *MessageState) {
	delete(q.messagesDelayed, msg.MessageID)
	atomic.AddUint64(&q.stats.TotalMessagesDelayedToReady, 1)
	atomic.AddInt64(&q.stats.NumMessagesDelayed, -1)
	q.moveMessageToReadyUnsafe(msg)
}

func (q *Queue) moveMessageToDLQUnsafe(msg *MessageState) {
	if msg.OriginalSourceQueue == nil {
		msg.OriginalSourceQueue = q
	}
	q.dlqTarget.Push(msg)
}

func (q *Queue) moveMessageToReadyUnsafe(msg *MessageState) {
	atomic.AddInt64(&q.stats.NumMessagesReady, 1)
	_ = q.messagesReadyOrdered.Push(msg.MessageGroupID, msg)
}

func (q *Queue) getQueueAttributesUnsafe(attributes ...types.QueueAttributeName) map[string]string {
	distinctAttributes := distinct(flatten(apply(attributes, func(v types.QueueAttributeName) []types.QueueAttributeName {
		switch v {
		case types.QueueAttributeNameAll:
			return v.Values()
		default:
			return []types.QueueAttributeName{v}
		}
	})))
	output := make(map[string]string)
	for _, attribute := range distinctAttributes {
		value := q.getQueueAttributeUnsafe(attribute)
		if value != "" {
			output[string(attribute)] = value
		}
	}
	return output
}

func (q *Queue) getQueueAttributeUnsafe(attributeName types.QueueAttributeName) string {
	switch attributeName {
	case types.QueueAttributeNameApproximateNumberOfMessages:
		return fmt.Sprint(atomic.LoadInt64(&q.stats.NumMessages))
	case types.QueueAttributeNameApproximateNumberOfMessagesNotVisible:
		return fmt.Sprint(atomic.LoadInt64(&q.stats.NumMessagesInflight))
	case types.QueueAttributeNameApproximateNumberOfMessagesDelayed:
		return fmt.Sprint(atomic.LoadInt64(&q.stats.NumMessagesDelayed))
	case types.QueueAttributeNameCreatedTimestamp:
		return fmt.Sprint(q.created.Unix())
	case types.QueueAttributeNameLastModifiedTimestamp:
		return fmt.Sprint(q.lastModified.Unix())
	case types.QueueAttributeNameMaximumMessageSize:
		return fmt.Sprint(q.MaximumMessageSizeBytes)
	case types.QueueAttributeNameMessageRetentionPeriod:
		return fmt.Sprint(int(q.MessageRetentionPeriod / time.Second))
	case types.QueueAttributeNamePolicy:
		if q.Policy.IsSet {
			return marshalJSON(q.Policy)
		}
		return ""
	case types.QueueAttributeNameQueueArn:
		return fmt.Sprint(q.ARN)
	case types.QueueAttributeNameReceiveMessageWaitTimeSeconds:
		return fmt.Sprint(int(q.ReceiveMessageWaitTime / time.Second))
	case types.QueueAttributeNameVisibilityTimeout:
		return fmt.Sprint(int(q.VisibilityTimeout / time.Second))
	case types.QueueAttributeNameDelaySeconds:
		if q.Delay.IsSet {
			return fmt.Sprint(int(q.Delay.Value / time.Second))
		}
		return ""
	case types.QueueAttributeNameRedrivePolicy:
		if q.RedrivePolicy.IsSet {
			return marshalJSON(q.RedrivePolicy.Value)
		}
		return ""
	case types.QueueAttributeNameFifoQueue:
		if q.FIFO {
			return "true"
		}
		return ""
	case types.QueueAttributeNameContentBasedDeduplication:
		if q.ContentBasedDeduplication {
			return "true"
		}
		return "false"
	case types.QueueAttributeNameDeduplicationScope:
		return coalesceZero(q.DeduplicationScope, "queue")
	default:
		return ""
	}
}

func (q *Queue) applyQueueAttributesUnsafe(messageAttributes map[string]string, applyDefaults bool) *Error {
	q.lastModified = q.clock.Now()

	delay, err := readAttributeDurationSeconds(messageAttributes, types.QueueAttributeNameDelaySeconds)
	if err != nil {
		return err
	}
	if delay.IsSet {
		if err = validateDelay(delay.Value); err != nil {
			return err
		}
		q.Delay = delay
	}

	maximumMessageSizeBytes, err := readAttributeInt(messageAttributes, types.QueueAttributeNameMaximumMessageSize)
	if err != nil {
		return err
	}
	if maximumMessageSizeBytes.IsSet {
		if err = validateMaximumMessageSizeBytes(maximumMessageSizeBytes.Value); err != nil {
			return err
		}
		q.MaximumMessageSizeBytes = maximumMessageSizeBytes.Value
	} else if applyDefaults {
		q.MaximumMessageSizeBytes = DefaultQueueMaximumMessageSizeBytes // 256KiB
	}

	messageRetentionPeriod, err := readAttributeDurationSeconds(messageAttributes, types.QueueAttributeNameMessageRetentionPeriod)
	if err != nil {
		return err
	}
	if messageRetentionPeriod.IsSet {
		if err = validateMessageRetentionPeriod(messageRetentionPeriod.Value); err != nil {
			return err
		}
		q.MessageRetentionPeriod = messageRetentionPeriod.Value
	} else if applyDefaults {
		q.MessageRetentionPeriod = DefaultQueueMessageRetentionPeriod
	}

	receiveMessageWaitTime, err := readAttributeDurationSeconds(messageAttributes, types.QueueAttributeNameReceiveMessageWaitTimeSeconds)
	if err != nil {
		return err
	}
	if receiveMessageWaitTime.IsSet {
		if err = validateReceiveMessageWaitTime(receiveMessageWaitTime.Value); err != nil {
			return err
		}
		q.ReceiveMessageWaitTime = receiveMessageWaitTime.Value
	} else if applyDefaults {
		q.ReceiveMessageWaitTime = DefaultQueueReceiveMessageWaitTime
	}

	visibilityTimeout, err := readAttributeDurationSeconds(messageAttributes, types.QueueAttributeNameVisibilityTimeout)
	if err != nil {
		return err
	}
	if visibilityTimeout.IsSet {
		if err = validateVisibilityTimeout(visibilityTimeout.Value); err != nil {
			return err
		}
		q.VisibilityTimeout = visibilityTimeout.Value
	} else if applyDefaults {
		q.VisibilityTimeout = DefaultQueueVisibilityTimeout
	}

	redrivePolicy, err := readAttributeRedrivePolicy(messageAttributes)
	if err != nil {
		return err
	}
	if redrivePolicy.IsSet {
		if err = validateRedrivePolicy(redrivePolicy.Value); err != nil {
			return err
		}
		q.RedrivePolicy = redrivePolicy
	}

	redriveAllowPolicy, err := readAttributeRedriveAllowPolicy(messageAttributes)
	if err != nil {
		return err
	}
	if redriveAllowPolicy.IsSet {
		if err = validateRedriveAllowPolicy(redriveAllowPolicy.Value); err != nil {
			return err
		}
		q.RedriveAllowPolicy = redriveAllowPolicy
	}

	policy, err := readAttributePolicy(messageAttributes)
	if err != nil {
		return err
	}
	if policy.IsSet {
		// validate policy ... later
		q.Policy = policy
	}

	if v, ok := messageAttributes[string(types.QueueAttributeNameContentBasedDeduplication)]; ok {
		q.ContentBasedDeduplication = v == "true"
	}
	if v, ok := messageAttributes[string(types.QueueAttributeNameDeduplicationScope)]; ok {
		q.DeduplicationScope = v
	}
	return nil
}
