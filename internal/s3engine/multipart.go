package s3engine

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Part is a single uploaded chunk of a multipart upload, kept as an
// independent byte sequence (never spliced) until CompleteMultipartUpload,
// matching spec.md's multipart-storage invariant: this keeps
// AbortMultipartUpload free and bounds the one copy that completion does
// to exactly the successful case.
type Part struct {
	PartNumber   int
	ETag         string
	Size         int64
	Body         []byte
	LastModified time.Time
}

// MultipartUpload is an in-progress upload; completion is single-shot and
// discards the upload from its bucket's registry.
type MultipartUpload struct {
	mu sync.Mutex

	UploadID    string
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
	Created     time.Time

	parts map[int]*Part
}

// NewMultipartUpload allocates an opaque upload id and an empty part map.
func NewMultipartUpload(now time.Time, bucket, key, contentType string, metadata map[string]string) *MultipartUpload {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &MultipartUpload{
		UploadID:    uuid.New().String(),
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType,
		Metadata:    metadata,
		Created:     now,
		parts:       make(map[int]*Part),
	}
}

// UploadPart stores or overwrites the body for partNumber, returning its
// freshly computed ETag.
func (u *MultipartUpload) UploadPart(now time.Time, partNumber int, body []byte) (*Part, *Error) {
	if partNumber < 1 || partNumber > MaximumPartNumber {
		return nil, ErrorInvalidArgument(fmt.Sprintf("part number must be between 1 and %d", MaximumPartNumber))
	}
	part := &Part{
		PartNumber:   partNumber,
		ETag:         md5ETag(body),
		Size:         int64(len(body)),
		Body:         body,
		LastModified: now,
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.parts[partNumber] = part
	return part, nil
}

// ListParts returns the stored parts ordered by part number.
func (u *MultipartUpload) ListParts() []*Part {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*Part, 0, len(u.parts))
	for n := 1; n <= MaximumPartNumber; n++ {
		if p, ok := u.parts[n]; ok {
			out = append(out, p)
		}
	}
	return out
}

// CompletedPart is a client-supplied (partNumber, etag) pair for
// CompleteMultipartUpload's validation pass.
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// Complete validates the client's ordered part list, concatenates the part
// bodies, and computes the final multipart ETag: md5(concat(md5(partᵢ)))-N.
func (u *MultipartUpload) Complete(now time.Time, requested []CompletedPart) (*Object, *Error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(requested) == 0 {
		return nil, ErrorInvalidPart()
	}
	lastPartNumber := 0
	var body bytes.Buffer
	var digestConcat bytes.Buffer
	for _, req := range requested {
		if req.PartNumber <= lastPartNumber {
			return nil, ErrorInvalidPartOrder()
		}
		lastPartNumber = req.PartNumber
		part, ok := u.parts[req.PartNumber]
		if !ok || unquote(part.ETag) != unquote(req.ETag) {
			return nil, ErrorInvalidPart()
		}
		body.Write(part.Body)
		sum := md5.Sum(part.Body)
		digestConcat.Write(sum[:])
	}
	finalSum := md5.Sum(digestConcat.Bytes())
	etag := fmt.Sprintf("%q", hex.EncodeToString(finalSum[:])+"-"+fmt.Sprint(len(requested)))
	return &Object{
		Key:          u.Key,
		Body:         body.Bytes(),
		ContentType:  u.ContentType,
		Metadata:     u.Metadata,
		Tags:         make(map[string]string),
		ETag:         etag,
		LastModified: now,
		Size:         int64(body.Len()),
	}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func (b *Bucket) createMultipartUpload(upload *MultipartUpload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads[upload.UploadID] = upload
}

func (b *Bucket) getMultipartUpload(uploadID string) (*MultipartUpload, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.uploads[uploadID]
	return u, ok
}

func (b *Bucket) discardMultipartUpload(uploadID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uploads, uploadID)
}

func (b *Bucket) listMultipartUploads() []*MultipartUpload {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*MultipartUpload, 0, len(b.uploads))
	for _, u := range b.uploads {
		out = append(out, u)
	}
	return out
}
