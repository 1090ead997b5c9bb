package s3engine

import (
	"net/url"
	"strings"
)

// ValidateBucketName applies the DNS-compatible bucket-name rule spec.md
// §3.3 calls for: 3-63 characters, lowercase letters/digits/hyphens/dots,
// must start and end with a letter or digit.
func ValidateBucketName(name string) bool {
	if len(name) < bucketNameMinLength || len(name) > bucketNameMaxLength {
		return false
	}
	if !isAlphanumeric(name[0]) || !isAlphanumeric(name[len(name)-1]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlphanumeric(c) || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// ValidateKey applies the 1..1024 UTF-8 byte rule spec.md §3.3 calls for.
func ValidateKey(key string) bool {
	n := len(key)
	return n >= 1 && n <= keyMaxBytes
}

// parseCopySource splits the x-amz-copy-source header value "bucket/key"
// (optionally URL-encoded and optionally leading-slashed) into its parts.
func parseCopySource(header string) (bucket, key string, ok bool) {
	if unescaped, err := url.PathUnescape(header); err == nil {
		header = unescaped
	}
	header = strings.TrimPrefix(header, "/")
	bucket, key, ok = strings.Cut(header, "/")
	return
}
