package s3engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_NewObject_ETagIsMD5OfBody(t *testing.T) {
	obj := NewObject(time.Now(), "k", []byte("Hello"), "text/plain", nil)
	require.Equal(t, `"8b1a9953c4611296a827abf8c47804d7"`, obj.ETag)
	require.Equal(t, int64(5), obj.Size)
}

func Test_parseRange_middle(t *testing.T) {
	r, ok := parseRange("bytes=2-5", 10)
	require.True(t, ok)
	require.Equal(t, ByteRange{Start: 2, End: 5}, r)
}

func Test_parseRange_suffix(t *testing.T) {
	r, ok := parseRange("bytes=-4", 10)
	require.True(t, ok)
	require.Equal(t, ByteRange{Start: 6, End: 9}, r)
}

func Test_parseRange_openEnded(t *testing.T) {
	r, ok := parseRange("bytes=7-", 10)
	require.True(t, ok)
	require.Equal(t, ByteRange{Start: 7, End: 9}, r)
}

func Test_parseRange_clampsEndToSize(t *testing.T) {
	r, ok := parseRange("bytes=0-100", 10)
	require.True(t, ok)
	require.Equal(t, ByteRange{Start: 0, End: 9}, r)
}

func Test_parseRange_malformed(t *testing.T) {
	_, ok := parseRange("nonsense", 10)
	require.False(t, ok)
}

func Test_parseRange_startPastEnd(t *testing.T) {
	_, ok := parseRange("bytes=9-5", 10)
	require.False(t, ok)
}
