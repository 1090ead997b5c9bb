// Package kinesisengine implements the Kinesis Data Streams thin store
// described in spec.md §4.4: fixed-shard streams holding ordered,
// monotonically sequenced record logs, addressed through opaque
// process-local shard iterators.
package kinesisengine

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"awslite/internal/uuid"
)

// Shard holds one ordered record log with a monotonic sequence counter.
type Shard struct {
	mu       sync.Mutex
	ShardID  string
	records  []types.Record
	nextSeq  int64
}

func newShard(id string) *Shard {
	return &Shard{ShardID: id}
}

func (s *Shard) putRecord(now time.Time, data []byte, partitionKey string) types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	seq := strconv.FormatInt(s.nextSeq, 10)
	rec := types.Record{
		Data:           data,
		PartitionKey:   &partitionKey,
		SequenceNumber: &seq,
		ApproximateArrivalTimestamp: &now,
	}
	s.records = append(s.records, rec)
	return rec
}

// recordsFrom returns up to limit records starting at index offset.
func (s *Shard) recordsFrom(offset, limit int) ([]types.Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.records) {
		return nil, len(s.records)
	}
	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}
	return s.records[offset:end], end
}

func (s *Shard) length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Stream is a single Kinesis data stream.
type Stream struct {
	Name            string
	ARN             string
	Status          types.StreamStatus
	Created         time.Time
	RetentionHours  int32
	Shards          []*Shard
	Tags            map[string]string
}

func newStream(now time.Time, region, account, name string, shardCount int32) *Stream {
	if shardCount < 1 {
		shardCount = 1
	}
	s := &Stream{
		Name:           name,
		ARN:            fmt.Sprintf("arn:aws:kinesis:%s:%s:stream/%s", region, account, name),
		Status:         types.StreamStatusActive,
		Created:        now,
		RetentionHours: 24,
		Tags:           make(map[string]string),
	}
	for i := int32(0); i < shardCount; i++ {
		s.Shards = append(s.Shards, newShard(fmt.Sprintf("shardId-%012d", i)))
	}
	return s
}

func (s *Stream) shard(id string) (*Shard, bool) {
	for _, sh := range s.Shards {
		if sh.ShardID == id {
			return sh, true
		}
	}
	return nil, false
}

// shardByPartitionKey hashes a partition key onto a shard by simple mod,
// enough to give PutRecord deterministic shard placement without a real
// hash-key-range partitioner.
func (s *Stream) shardByPartitionKey(partitionKey string) *Shard {
	sum := 0
	for _, c := range partitionKey {
		sum += int(c)
	}
	return s.Shards[sum%len(s.Shards)]
}

type iteratorPosition struct {
	streamName string
	shardID    string
	offset     int
}

// Registry is the process-wide Kinesis stream store.
type Registry struct {
	mu        sync.RWMutex
	region    string
	account   string
	streams   map[string]*Stream
	iterators map[string]iteratorPosition
}

// NewRegistry returns an empty registry for the given identity.
func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:    region,
		account:   account,
		streams:   make(map[string]*Stream),
		iterators: make(map[string]iteratorPosition),
	}
}

func (r *Registry) CreateStream(now time.Time, name string, shardCount int32) (*Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; ok {
		return nil, false
	}
	s := newStream(now, r.region, r.account, name, shardCount)
	r.streams[name] = s
	return s, true
}

func (r *Registry) GetStream(name string) (*Stream, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.streams[name]
	return s, ok
}

func (r *Registry) DeleteStream(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; !ok {
		return false
	}
	delete(r.streams, name)
	return true
}

func (r *Registry) ListStreams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) EachStream(yield func(*Stream) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.streams {
		if !yield(s) {
			return
		}
	}
}

// NewShardIterator mints an opaque token for the given shard, positioned
// per iteratorType (TRIM_HORIZON/LATEST/AT_SEQUENCE_NUMBER/AFTER_SEQUENCE_NUMBER).
// Iterators never expire within the process lifetime, per Open Question #3.
func (r *Registry) NewShardIterator(stream *Stream, shard *Shard, iteratorType types.ShardIteratorType, sequenceNumber string) string {
	offset := 0
	switch iteratorType {
	case types.ShardIteratorTypeTrimHorizon:
		offset = 0
	case types.ShardIteratorTypeLatest:
		offset = shard.length()
	case types.ShardIteratorTypeAtSequenceNumber:
		offset = seqToOffset(sequenceNumber)
	case types.ShardIteratorTypeAfterSequenceNumber:
		offset = seqToOffset(sequenceNumber) + 1
	}
	token := uuid.V4().String()
	r.mu.Lock()
	r.iterators[token] = iteratorPosition{streamName: stream.Name, shardID: shard.ShardID, offset: offset}
	r.mu.Unlock()
	return token
}

func seqToOffset(seq string) int {
	n, err := strconv.Atoi(seq)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

// GetRecords resolves an iterator token to its stream/shard/offset, reads
// up to limit records, and returns a fresh token for the next read.
func (r *Registry) GetRecords(token string, limit int) ([]types.Record, string, bool) {
	r.mu.Lock()
	pos, ok := r.iterators[token]
	r.mu.Unlock()
	if !ok {
		return nil, "", false
	}
	stream, ok := r.GetStream(pos.streamName)
	if !ok {
		return nil, "", false
	}
	shard, ok := stream.shard(pos.shardID)
	if !ok {
		return nil, "", false
	}
	records, nextOffset := shard.recordsFrom(pos.offset, limit)
	nextToken := uuid.V4().String()
	r.mu.Lock()
	r.iterators[nextToken] = iteratorPosition{streamName: pos.streamName, shardID: pos.shardID, offset: nextOffset}
	r.mu.Unlock()
	return records, nextToken, true
}

func (s *Stream) tagsSnapshot() map[string]string {
	out := make(map[string]string, len(s.Tags))
	for k, v := range s.Tags {
		out[k] = v
	}
	return out
}
