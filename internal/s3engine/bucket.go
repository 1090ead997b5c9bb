package s3engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// VersioningStatus is the bucket versioning state. Object history is never
// retained regardless of status (spec.md §4.3's documented limitation);
// the status is recorded for GetBucketVersioning/PutBucketVersioning only.
type VersioningStatus string

const (
	VersioningUnset     VersioningStatus = ""
	VersioningEnabled   VersioningStatus = "Enabled"
	VersioningSuspended VersioningStatus = "Suspended"
)

// Bucket is a single S3 bucket's object and multipart-upload registry.
// Mutating operations hold mu; reads of a single object may proceed
// without blocking unrelated writes by taking a snapshot under a brief
// lock, matching sqsengine's per-queue locking discipline.
type Bucket struct {
	mu sync.RWMutex

	Name       string
	Region     string
	Created    time.Time
	Versioning VersioningStatus
	Tags       map[string]string

	clock clockwork.Clock

	objects map[string]*Object
	uploads map[string]*MultipartUpload
}

// NewBucket constructs an empty bucket. name must already be validated by
// ValidateBucketName.
func NewBucket(clock clockwork.Clock, name, region string) *Bucket {
	return &Bucket{
		Name:       name,
		Region:     region,
		Created:    clock.Now(),
		Versioning: VersioningUnset,
		Tags:       make(map[string]string),
		clock:      clock,
		objects:    make(map[string]*Object),
		uploads:    make(map[string]*MultipartUpload),
	}
}

// IsEmpty reports whether the bucket has no objects and no in-progress
// multipart uploads; DeleteBucket refuses with BucketNotEmpty otherwise.
func (b *Bucket) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects) == 0 && len(b.uploads) == 0
}

// ObjectCount returns the number of objects currently stored in the bucket.
func (b *Bucket) ObjectCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

func (b *Bucket) getObject(key string) (*Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	return obj, ok
}

func (b *Bucket) putObject(obj *Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[obj.Key] = obj
}

func (b *Bucket) deleteObject(key string) (existed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, existed = b.objects[key]
	delete(b.objects, key)
	return
}

// ListEntry is a single row of a ListObjectsV2 result: either an object
// (IsPrefix false) or a common prefix folded under a delimiter.
type ListEntry struct {
	Key      string
	IsPrefix bool
	Object   *Object
}

// ListObjectsV2Input mirrors the query-string parameters spec.md §4.3
// documents for ListObjectsV2.
type ListObjectsV2Input struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int
	StartAfter        string
	ContinuationToken string
}

// ListObjectsV2Output is the (Contents, CommonPrefixes, truncation) result.
type ListObjectsV2Output struct {
	Contents              []*Object
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// ListObjectsV2 implements spec.md's four-step algorithm: prefix-filter,
// delimiter-partition into Contents/CommonPrefixes, lexicographic sort,
// then truncate to MaxKeys with a continuation token encoding the last
// entry returned.
func (b *Bucket) ListObjectsV2(input ListObjectsV2Input) ListObjectsV2Output {
	maxKeys := input.MaxKeys
	if maxKeys <= 0 || maxKeys > DefaultMaxKeys {
		maxKeys = DefaultMaxKeys
	}

	b.mu.RLock()
	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	objectsByKey := make(map[string]*Object, len(b.objects))
	for k, v := range b.objects {
		objectsByKey[k] = v
	}
	b.mu.RUnlock()

	sort.Strings(keys)

	startAfter := input.StartAfter
	if input.ContinuationToken != "" {
		if decoded, ok := decodeContinuationToken(input.ContinuationToken); ok {
			startAfter = decoded
		}
	}

	entries := make([]ListEntry, 0, len(keys))
	seenPrefixes := make(map[string]bool)
	for _, key := range keys {
		if !strings.HasPrefix(key, input.Prefix) {
			continue
		}
		if startAfter != "" && key <= startAfter {
			continue
		}
		if input.Delimiter != "" {
			rest := key[len(input.Prefix):]
			if idx := strings.Index(rest, input.Delimiter); idx >= 0 {
				prefix := key[:len(input.Prefix)+idx+len(input.Delimiter)]
				if !seenPrefixes[prefix] {
					seenPrefixes[prefix] = true
					entries = append(entries, ListEntry{Key: prefix, IsPrefix: true})
				}
				continue
			}
		}
		entries = append(entries, ListEntry{Key: key, Object: objectsByKey[key]})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var out ListObjectsV2Output
	for i, entry := range entries {
		if i >= maxKeys {
			out.IsTruncated = true
			out.NextContinuationToken = encodeContinuationToken(entries[i-1].Key)
			break
		}
		if entry.IsPrefix {
			out.CommonPrefixes = append(out.CommonPrefixes, entry.Key)
		} else {
			out.Contents = append(out.Contents, entry.Object)
		}
	}
	return out
}

// DeleteObjectsResult reports per-key outcomes for a DeleteObjects batch;
// missing keys succeed silently per spec.md §4.3.
type DeleteObjectsResult struct {
	Deleted []string
	Errors  []DeleteObjectError
}

type DeleteObjectError struct {
	Key     string
	Code    string
	Message string
}

func (b *Bucket) DeleteObjects(keys []string) DeleteObjectsResult {
	var result DeleteObjectsResult
	for _, key := range keys {
		b.deleteObject(key)
		result.Deleted = append(result.Deleted, key)
	}
	return result
}

func encodeContinuationToken(lastKey string) string {
	return fmt.Sprintf("%x", []byte(lastKey))
}

func decodeContinuationToken(token string) (string, bool) {
	decoded := make([]byte, len(token)/2)
	for i := 0; i < len(decoded); i++ {
		var b byte
		if _, err := fmt.Sscanf(token[i*2:i*2+2], "%02x", &b); err != nil {
			return "", false
		}
		decoded[i] = b
	}
	return string(decoded), true
}
