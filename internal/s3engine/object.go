package s3engine

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Object is the latest (and only retained) version of a key's content,
// matching spec.md §3.3: bucket versioning records a status but never
// keeps history.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	Metadata     map[string]string
	Tags         map[string]string
	ETag         string
	LastModified time.Time
	Size         int64
}

// md5ETag returns the AWS-style quoted hex md5 of body.
func md5ETag(body []byte) string {
	sum := md5.Sum(body)
	return fmt.Sprintf("%q", hex.EncodeToString(sum[:]))
}

// NewObject builds an Object for a single-shot PutObject, computing its
// ETag as the quoted hex md5 of the body per spec.md's ETag idempotence
// invariant.
func NewObject(now time.Time, key string, body []byte, contentType string, metadata map[string]string) *Object {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &Object{
		Key:          key,
		Body:         body,
		ContentType:  contentType,
		Metadata:     metadata,
		Tags:         make(map[string]string),
		ETag:         md5ETag(body),
		LastModified: now,
		Size:         int64(len(body)),
	}
}

// ByteRange is a resolved, inclusive [Start, End] slice of an object body.
type ByteRange struct {
	Start, End int64
}

// parseRange parses an HTTP Range header value of the form
// "bytes=a-b" / "bytes=-N" / "bytes=a-" against a body of the given size.
// Malformed or unsatisfiable ranges return ok=false, matching spec.md's
// InvalidArgument-on-malformed-range rule (the REST layer is responsible
// for rendering that error).
func parseRange(header string, size int64) (ByteRange, bool) {
	const prefix = "bytes="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ByteRange{}, false
	}
	spec := header[len(prefix):]
	var start, end int64
	switch {
	case spec == "":
		return ByteRange{}, false
	case spec[0] == '-':
		var n int64
		if _, err := fmt.Sscanf(spec, "-%d", &n); err != nil || n <= 0 {
			return ByteRange{}, false
		}
		start = size - n
		if start < 0 {
			start = 0
		}
		end = size - 1
	default:
		var hasEnd bool
		var a, e int64
		if n, _ := fmt.Sscanf(spec, "%d-%d", &a, &e); n == 2 {
			hasEnd = true
			start, end = a, e
		} else if n, _ := fmt.Sscanf(spec, "%d-", &a); n == 1 {
			start, end = a, size-1
		} else {
			return ByteRange{}, false
		}
		if hasEnd && e >= size {
			end = size - 1
		}
	}
	if start > end || start < 0 || size == 0 {
		return ByteRange{}, false
	}
	if end >= size {
		end = size - 1
	}
	return ByteRange{Start: start, End: end}, true
}
