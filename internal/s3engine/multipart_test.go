package s3engine

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MultipartUpload_Complete(t *testing.T) {
	now := time.Now()
	upload := NewMultipartUpload(now, "bucket", "key", "application/octet-stream", nil)

	part1Body := []byte(strings.Repeat("A", 5*1024*1024))
	part2Body := []byte("B")

	part1, err := upload.UploadPart(now, 1, part1Body)
	require.Nil(t, err)
	part2, err := upload.UploadPart(now, 2, part2Body)
	require.Nil(t, err)

	obj, completeErr := upload.Complete(now, []CompletedPart{
		{PartNumber: 1, ETag: part1.ETag},
		{PartNumber: 2, ETag: part2.ETag},
	})
	require.Nil(t, completeErr)

	var expectedConcat bytes.Buffer
	sum1 := md5.Sum(part1Body)
	sum2 := md5.Sum(part2Body)
	expectedConcat.Write(sum1[:])
	expectedConcat.Write(sum2[:])
	finalSum := md5.Sum(expectedConcat.Bytes())
	expectedETag := `"` + hex.EncodeToString(finalSum[:]) + "-2" + `"`

	require.Equal(t, expectedETag, obj.ETag)
	require.Equal(t, append(part1Body, part2Body...), obj.Body)
}

func Test_MultipartUpload_Complete_outOfOrderParts(t *testing.T) {
	now := time.Now()
	upload := NewMultipartUpload(now, "bucket", "key", "application/octet-stream", nil)
	part1, _ := upload.UploadPart(now, 1, []byte("a"))
	part2, _ := upload.UploadPart(now, 2, []byte("b"))

	_, err := upload.Complete(now, []CompletedPart{
		{PartNumber: 2, ETag: part2.ETag},
		{PartNumber: 1, ETag: part1.ETag},
	})
	require.NotNil(t, err)
	require.Equal(t, "InvalidPartOrder", err.Code)
}

func Test_MultipartUpload_Complete_etagMismatch(t *testing.T) {
	now := time.Now()
	upload := NewMultipartUpload(now, "bucket", "key", "application/octet-stream", nil)
	_, _ = upload.UploadPart(now, 1, []byte("a"))

	_, err := upload.Complete(now, []CompletedPart{{PartNumber: 1, ETag: `"deadbeef"`}})
	require.NotNil(t, err)
	require.Equal(t, "InvalidPart", err.Code)
}

func Test_MultipartUpload_UploadPart_invalidPartNumber(t *testing.T) {
	now := time.Now()
	upload := NewMultipartUpload(now, "bucket", "key", "application/octet-stream", nil)
	_, err := upload.UploadPart(now, 0, []byte("a"))
	require.NotNil(t, err)
	_, err = upload.UploadPart(now, MaximumPartNumber+1, []byte("a"))
	require.NotNil(t, err)
}

func Test_MultipartUpload_ListParts_orderedByPartNumber(t *testing.T) {
	now := time.Now()
	upload := NewMultipartUpload(now, "bucket", "key", "application/octet-stream", nil)
	_, _ = upload.UploadPart(now, 2, []byte("b"))
	_, _ = upload.UploadPart(now, 1, []byte("a"))
	parts := upload.ListParts()
	require.Len(t, parts, 2)
	require.Equal(t, 1, parts[0].PartNumber)
	require.Equal(t, 2, parts[1].PartNumber)
}
