package s3engine

const (
	DefaultHost   = "s3.amazonaws.com"
	DefaultRegion = "us-east-1"

	// MaximumObjectSize is the largest single-request body this engine
	// accepts, matching spec.md's 5 GiB request-body cap.
	MaximumObjectSize = 5 * 1024 * 1024 * 1024

	// MinimumPartSize is enforced on every part except the last, matching
	// AWS's real multipart minimum.
	MinimumPartSize = 5 * 1024 * 1024

	MaximumPartNumber = 10000

	DefaultMaxKeys = 1000

	bucketNameMinLength = 3
	bucketNameMaxLength = 63
	keyMaxBytes         = 1024
)
