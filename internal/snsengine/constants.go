package snsengine

const (
	DefaultRegion = "us-east-1"

	// XMLNamespace is the namespace every SNS Query response is rendered
	// under, per spec.md's AWS-Query envelope rule.
	XMLNamespace = "http://sns.amazonaws.com/doc/2010-03-31/"

	maxTopicNameLength = 256
	maxTagsPerResource  = 50
)
