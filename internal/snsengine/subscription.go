package snsengine

import "time"

// Subscription is a single SNS subscription. Per spec.md §6.3 subscriptions
// auto-confirm: Confirmed is set true at creation time and ConfirmSubscription
// is a no-op against an already-confirmed subscription (SPEC_FULL.md open
// question #1).
type Subscription struct {
	ARN       string
	TopicARN  string
	Protocol  string
	Endpoint  string
	Owner     string
	Created   time.Time
	Confirmed bool
	Attributes map[string]string
}

func newSubscription(now time.Time, arn, topicARN, protocol, endpoint, owner string) *Subscription {
	return &Subscription{
		ARN:       arn,
		TopicARN:  topicARN,
		Protocol:  protocol,
		Endpoint:  endpoint,
		Owner:     owner,
		Created:   now,
		Confirmed: true,
		Attributes: map[string]string{
			"SubscriptionArn":               arn,
			"TopicArn":                      topicARN,
			"Protocol":                      protocol,
			"Endpoint":                      endpoint,
			"Owner":                         owner,
			"PendingConfirmation":           "false",
			"RawMessageDelivery":            "false",
			"ConfirmationWasAuthenticated":  "true",
		},
	}
}
