package s3engine

import (
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Buckets is the process-wide bucket registry. Unlike sqsengine's
// per-account Queues, S3 bucket names are globally unique within the
// emulator (matching real S3's global-namespace semantics), so there is
// a single Buckets registry rather than one per account.
type Buckets struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	region  string
	buckets map[string]*Bucket
}

func NewBuckets(clock clockwork.Clock, region string) *Buckets {
	return &Buckets{
		clock:   clock,
		region:  region,
		buckets: make(map[string]*Bucket),
	}
}

// CreateBucket creates a new bucket, or returns ErrorBucketAlreadyOwnedByYou
// if one with the same name already exists (spec.md's emulator has a
// single implicit owner, so "owned by someone else" never applies).
func (b *Buckets) CreateBucket(name string) (*Bucket, *Error) {
	if !ValidateBucketName(name) {
		return nil, ErrorInvalidBucketName(name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.buckets[name]; ok {
		return existing, ErrorBucketAlreadyOwnedByYou(name)
	}
	bucket := NewBucket(b.clock, name, b.region)
	b.buckets[name] = bucket
	return bucket, nil
}

func (b *Buckets) GetBucket(name string) (*Bucket, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bucket, ok := b.buckets[name]
	return bucket, ok
}

// DeleteBucket removes a bucket, refusing with BucketNotEmpty if it still
// holds objects or in-progress multipart uploads.
func (b *Buckets) DeleteBucket(name string) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()
	bucket, ok := b.buckets[name]
	if !ok {
		return ErrorNoSuchBucket(name)
	}
	if !bucket.IsEmpty() {
		return ErrorBucketNotEmpty(name)
	}
	delete(b.buckets, name)
	return nil
}

// ListBuckets returns all buckets sorted by name.
func (b *Buckets) ListBuckets() []*Bucket {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Bucket, 0, len(b.buckets))
	for _, bucket := range b.buckets {
		out = append(out, bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
