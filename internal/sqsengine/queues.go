package sqsengine

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// QueueDeletionRetentionPeriod is how long a deleted queue's name and arn
// stay reserved (preventing immediate recreation) before being forgotten.
const QueueDeletionRetentionPeriod = 60 * time.Second

// NewQueues returns a new queues storage for a given account.
func NewQueues(clock clockwork.Clock, accountID string) *Queues {
	return &Queues{
		clock:                       clock,
		accountID:                   accountID,
		queueURLs:                   make(map[string]string),
		queueARNs:                   make(map[string]string),
		queues:                      make(map[string]*Queue),
		moveMessageTasks:            make(map[string]*MessageMoveTask),
		moveMessageTasksBySourceArn: make(map[string]*OrderedSet[string]),
	}
}

// Queues holds all the queues for a single account.
type Queues struct {
	clock     clockwork.Clock
	accountID string

	queuesMu                    sync.Mutex
	queueURLs                   map[string]string
	queueARNs                   map[string]string
	queues                      map[string]*Queue
	moveMessageTasks            map[string]*MessageMoveTask
	moveMessageTasksBySourceArn map[string]*OrderedSet[string]

	deletedQueueWorker       *deletedQueueWorker
	deletedQueueWorkerCancel func()
}

// AccountID returns the account these queues belong to.
func (q *Queues) AccountID() string {
	return q.accountID
}

// Clock returns the clock used by these queues and their workers.
func (q *Queues) Clock() clockwork.Clock {
	return q.clock
}

// Start begins the background worker that reaps deleted queues.
func (q *Queues) Start(ctx context.Context) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	if q.deletedQueueWorker != nil {
		return
	}
	worker := &deletedQueueWorker{queues: q, clock: q.clock}
	workerCtx, cancel := context.WithCancel(ctx)
	q.deletedQueueWorker = worker
	q.deletedQueueWorkerCancel = cancel
	go worker.Start(workerCtx)
}

func (q *Queues) Close() {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	for _, queue := range q.queues {
		queue.Close()
	}
	if q.deletedQueueWorkerCancel != nil {
		q.deletedQueueWorkerCancel()
		q.deletedQueueWorkerCancel = nil
	}
	q.deletedQueueWorker = nil
}

func (q *Queues) AddQueue(queue *Queue) (err *Error) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	if existingURL, ok := q.queueURLs[queue.Name]; ok {
		if existing, found := q.queues[existingURL]; found && !existing.IsDeleted() && len(existing.Attributes) == len(queue.Attributes) {
			same := true
			for key, value := range queue.Attributes {
				if existingValue, has := existing.Attributes[key]; !has || existingValue != value {
					same = false
				}
			}
			if same {
				return
			}
		}
		err = ErrorInvalidParameterValue(fmt.Sprintf("QueueName: queue already exists with name: %s", queue.Name))
		return
	}
	if queue.RedrivePolicy.IsSet {
		dlqURL, ok := q.queueARNs[queue.RedrivePolicy.Value.DeadLetterTargetArn]
		if !ok {
			err = ErrorInvalidParameterValue(fmt.Sprintf("DeadLetterTargetArn: queue with arn not found: %s", queue.RedrivePolicy.Value.DeadLetterTargetArn))
			return
		}
		dlq, ok := q.queues[dlqURL]
		if !ok {
			err = ErrorInternalServer(fmt.Sprintf("dlq not found with URL: %s", dlqURL))
			return
		}
		queue.dlqTarget = dlq
		dlq.AddDLQSources(queue)
	}
	q.queueURLs[queue.Name] = queue.URL
	q.queueARNs[queue.ARN] = queue.URL
	q.queues[queue.URL] = queue
	return
}

func (q *Queues) PurgeQueue(queueURL string) (ok bool) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	queue, ok := q.queues[queueURL]
	if !ok || queue.IsDeleted() {
		ok = false
		return
	}
	queue.Purge()
	return
}

// EachQueue iterates over all queues that have not been deleted.
func (q *Queues) EachQueue() iter.Seq[*Queue] {
	return func(yield func(*Queue) bool) {
		q.queuesMu.Lock()
		defer q.queuesMu.Unlock()
		for _, queue := range q.queues {
			if queue.IsDeleted() {
				continue
			}
			if !yield(queue) {
				return
			}
		}
	}
}

func (q *Queues) StartMoveMessageTask(clock clockwork.Clock, sourceArn, destinationArn string, rateLimit int32) (*MessageMoveTask, *Error) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	sourceQueueURL, ok := q.queueARNs[sourceArn]
	if !ok {
		return nil, ErrorInvalidParameterValue("SourceArn: queueURL for arn not found")
	}
	sourceQueue, ok := q.queues[sourceQueueURL]
	if !ok {
		return nil, ErrorInvalidParameterValue("SourceArn: queue not found for queueURL")
	}
	destinationQueueURL, ok := q.queueARNs[destinationArn]
	if !ok {
		return nil, ErrorInvalidParameterValue("DestinationArn: queueURL for arn not found")
	}
	destinationQueue, ok := q.queues[destinationQueueURL]
	if !ok {
		return nil, ErrorInvalidParameterValue("DestinationArn: queue not found for queueURL")
	}
	mmt := NewMessagesMoveTask(clock, sourceQueue, destinationQueue, int(rateLimit))
	mmt.Start(context.Background())
	q.moveMessageTasks[mmt.TaskHandle] = mmt
	if _, ok := q.moveMessageTasksBySourceArn[sourceArn]; !ok {
		q.moveMessageTasksBySourceArn[sourceArn] = NewOrderedSet[string]()
	}
	q.moveMessageTasksBySourceArn[sourceArn].Add(mmt.TaskHandle)
	return mmt, nil
}

func (q *Queues) CancelMoveMessageTask(taskHandle string) (*MessageMoveTask, *Error) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()

	task, ok := q.moveMessageTasks[taskHandle]
	if !ok {
		return nil, ErrorInvalidParameterValue("TaskHandle: not found")
	}
	if task.Status() != MessageMoveStatusRunning {
		return nil, ErrorInvalidParameterValue("TaskHandle: task status is not RUNNING")
	}
	task.Close()
	return task, nil
}

func (q *Queues) EachMoveMessageTasks(sourceArn string) iter.Seq[*MessageMoveTask] {
	return func(yield func(*MessageMoveTask) bool) {
		q.queuesMu.Lock()
		defer q.queuesMu.Unlock()
		orderedTasks, ok := q.moveMessageTasksBySourceArn[sourceArn]
		if !ok {
			return
		}
		for taskHandle := range orderedTasks.InOrder() {
			mmt, ok := q.moveMessageTasks[taskHandle]
			if !ok {
				continue
			}
			if !yield(mmt) {
				return
			}
		}
	}
}

func (q *Queues) GetQueueURL(queueName string) (queueURL string, ok bool) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	queueURL, ok = q.queueURLs[queueName]
	return
}

func (q *Queues) GetQueue(queueURL string) (queue *Queue, ok bool) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	queue, ok = q.queues[queueURL]
	if ok && queue.IsDeleted() {
		queue, ok = nil, false
	}
	return
}

// DeleteQueue marks a queue as deleted; it remains visible internally
// (e.g. to PurgeQueue callers holding a stale reference, or to
// PurgeDeletedQueues) until the retention period elapses.
func (q *Queues) DeleteQueue(queueURL string) (ok bool) {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	var queue *Queue
	queue, ok = q.queues[queueURL]
	if !ok {
		return
	}
	queue.Close()
	queue.MarkDeleted(q.clock.Now())

	if queue.dlqTarget != nil {
		queue.dlqTarget.RemoveDLQSource(queueURL)
	}
	return
}

// PurgeDeletedQueues forgets queues that were deleted more than
// [QueueDeletionRetentionPeriod] ago, freeing their names for reuse.
func (q *Queues) PurgeDeletedQueues() {
	q.queuesMu.Lock()
	defer q.queuesMu.Unlock()
	now := q.clock.Now()
	for queueURL, queue := range q.queues {
		if !queue.IsDeleted() {
			continue
		}
		if now.Sub(queue.Deleted()) >= QueueDeletionRetentionPeriod {
			delete(q.queueURLs, queue.Name)
			delete(q.queueARNs, queue.ARN)
			delete(q.queues, queueURL)
		}
	}
}
