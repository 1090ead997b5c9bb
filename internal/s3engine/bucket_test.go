package s3engine

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func createTestBucket(t *testing.T, clock clockwork.Clock) *Bucket {
	t.Helper()
	return NewBucket(clock, "test-bucket", DefaultRegion)
}

func Test_NewBuckets_CreateBucket(t *testing.T) {
	buckets := NewBuckets(clockwork.NewFakeClock(), DefaultRegion)
	bucket, err := buckets.CreateBucket("my-bucket")
	require.Nil(t, err)
	require.Equal(t, "my-bucket", bucket.Name)
	require.Equal(t, VersioningUnset, bucket.Versioning)
}

func Test_NewBuckets_CreateBucket_invalidName(t *testing.T) {
	buckets := NewBuckets(clockwork.NewFakeClock(), DefaultRegion)
	_, err := buckets.CreateBucket("AB")
	require.NotNil(t, err)
	require.Equal(t, "InvalidBucketName", err.Code)
}

func Test_NewBuckets_CreateBucket_alreadyOwned(t *testing.T) {
	buckets := NewBuckets(clockwork.NewFakeClock(), DefaultRegion)
	_, err := buckets.CreateBucket("my-bucket")
	require.Nil(t, err)
	_, err = buckets.CreateBucket("my-bucket")
	require.NotNil(t, err)
	require.Equal(t, "BucketAlreadyOwnedByYou", err.Code)
}

func Test_Buckets_DeleteBucket_notEmpty(t *testing.T) {
	clock := clockwork.NewFakeClock()
	buckets := NewBuckets(clock, DefaultRegion)
	bucket, _ := buckets.CreateBucket("my-bucket")
	bucket.putObject(NewObject(clock.Now(), "k", []byte("v"), "text/plain", nil))
	err := buckets.DeleteBucket("my-bucket")
	require.NotNil(t, err)
	require.Equal(t, "BucketNotEmpty", err.Code)
}

func Test_Buckets_DeleteBucket(t *testing.T) {
	buckets := NewBuckets(clockwork.NewFakeClock(), DefaultRegion)
	_, _ = buckets.CreateBucket("my-bucket")
	require.Nil(t, buckets.DeleteBucket("my-bucket"))
	_, ok := buckets.GetBucket("my-bucket")
	require.False(t, ok)
}

func Test_Bucket_ListObjectsV2_prefixAndDelimiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bucket := createTestBucket(t, clock)
	for _, key := range []string{"a/1", "a/2", "a/b/3", "z"} {
		bucket.putObject(NewObject(clock.Now(), key, []byte("x"), "text/plain", nil))
	}
	result := bucket.ListObjectsV2(ListObjectsV2Input{Prefix: "a/", Delimiter: "/"})
	require.Len(t, result.Contents, 2)
	require.Equal(t, "a/1", result.Contents[0].Key)
	require.Equal(t, "a/2", result.Contents[1].Key)
	require.Equal(t, []string{"a/b/"}, result.CommonPrefixes)
}

func Test_Bucket_ListObjectsV2_truncation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bucket := createTestBucket(t, clock)
	for _, key := range []string{"a", "b", "c"} {
		bucket.putObject(NewObject(clock.Now(), key, []byte("x"), "text/plain", nil))
	}
	result := bucket.ListObjectsV2(ListObjectsV2Input{MaxKeys: 2})
	require.Len(t, result.Contents, 2)
	require.True(t, result.IsTruncated)
	require.NotEmpty(t, result.NextContinuationToken)

	next := bucket.ListObjectsV2(ListObjectsV2Input{MaxKeys: 2, ContinuationToken: result.NextContinuationToken})
	require.Len(t, next.Contents, 1)
	require.Equal(t, "c", next.Contents[0].Key)
	require.False(t, next.IsTruncated)
}

func Test_Bucket_DeleteObjects_missingKeysSucceedSilently(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bucket := createTestBucket(t, clock)
	result := bucket.DeleteObjects([]string{"does-not-exist"})
	require.Equal(t, []string{"does-not-exist"}, result.Deleted)
	require.Empty(t, result.Errors)
}
