package snsengine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
	"awslite/internal/uuid"
)

// Registry is the process-wide SNS store: topics and subscriptions keyed by
// ARN, mirroring S3's globally-unique-name registry rather than sqsengine's
// per-account one, since SPEC_FULL.md treats every thin store's identity
// space as a single flat namespace scoped only by the process-wide account
// id, not a multi-tenant hierarchy.
type Registry struct {
	mu            sync.RWMutex
	clock         clockwork.Clock
	region        string
	accountID     string
	topics        map[string]*Topic
	subscriptions map[string]*Subscription
}

// NewRegistry returns an empty registry.
func NewRegistry(clock clockwork.Clock, region, accountID string) *Registry {
	return &Registry{
		clock:         clock,
		region:        region,
		accountID:     accountID,
		topics:        make(map[string]*Topic),
		subscriptions: make(map[string]*Subscription),
	}
}

func (r *Registry) topicARN(name string) string {
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", r.region, r.accountID, name)
}

func (r *Registry) subscriptionARN(topicARN, subID string) string {
	return topicARN + ":" + subID
}

// CreateTopic creates a topic or returns the existing one if the name
// matches exactly (SNS CreateTopic is idempotent on name).
func (r *Registry) CreateTopic(name string, attributes, tags map[string]string) (*Topic, *protocol.QueryError) {
	if name == "" || len(name) > maxTopicNameLength {
		return nil, ErrorInvalidParameter("Name")
	}
	arn := r.topicARN(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.topics[arn]; ok {
		return existing, nil
	}
	topic := newTopic(r.clock.Now(), arn, name)
	for k, v := range attributes {
		topic.Attributes[k] = v
	}
	for k, v := range tags {
		topic.Tags[k] = v
	}
	r.topics[arn] = topic
	return topic, nil
}

// GetTopic looks up a topic by ARN.
func (r *Registry) GetTopic(arn string) (*Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[arn]
	return t, ok
}

// DeleteTopic removes a topic and every subscription bound to it. Missing
// topics are a no-op success, matching the rest-of-pack's idempotent-delete
// convention (SQS DeleteQueue, S3 DeleteObjects).
func (r *Registry) DeleteTopic(arn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.topics, arn)
	for subARN, sub := range r.subscriptions {
		if sub.TopicARN == arn {
			delete(r.subscriptions, subARN)
		}
	}
}

// ListTopics returns every topic ARN, sorted.
func (r *Registry) ListTopics() []*Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Topic, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ARN < out[j].ARN })
	return out
}

// Subscribe creates a new, auto-confirmed subscription.
func (r *Registry) Subscribe(topicARN, protocolName, endpoint string) (*Subscription, *protocol.QueryError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[topicARN]; !ok {
		return nil, ErrorTopicNotFound()
	}
	subARN := r.subscriptionARN(topicARN, uuid.V4().String())
	sub := newSubscription(r.clock.Now(), subARN, topicARN, protocolName, endpoint, r.accountID)
	r.subscriptions[subARN] = sub
	return sub, nil
}

// ConfirmSubscription is a no-op success against an already-confirmed
// subscription, per SPEC_FULL.md's Open Question decision #1.
func (r *Registry) ConfirmSubscription(topicARN, token string) (*Subscription, *protocol.QueryError) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subscriptions {
		if sub.TopicARN == topicARN {
			return sub, nil
		}
	}
	return nil, ErrorSubscriptionNotFound()
}

// Unsubscribe removes a subscription by ARN. Missing is a no-op.
func (r *Registry) Unsubscribe(arn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscriptions, arn)
}

// GetSubscription looks up a subscription by ARN.
func (r *Registry) GetSubscription(arn string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subscriptions[arn]
	return sub, ok
}

// ListSubscriptions returns every subscription, sorted by ARN.
func (r *Registry) ListSubscriptions() []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Subscription, 0, len(r.subscriptions))
	for _, s := range r.subscriptions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ARN < out[j].ARN })
	return out
}

// ListSubscriptionsByTopic returns subscriptions bound to the given topic.
func (r *Registry) ListSubscriptionsByTopic(topicARN string) []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Subscription
	for _, s := range r.subscriptions {
		if s.TopicARN == topicARN {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ARN < out[j].ARN })
	return out
}

// Publish records the message on the topic's recent-message ring (delivery
// itself is out of scope per spec.md's Non-goals) and returns a fresh
// message id.
func (r *Registry) Publish(topicARN, subject, body string) (string, *protocol.QueryError) {
	topic, ok := r.GetTopic(topicARN)
	if !ok {
		return "", ErrorTopicNotFound()
	}
	messageID := uuid.V4().String()
	topic.recordPublish(PublishedMessage{
		MessageID: messageID,
		Subject:   subject,
		Body:      body,
		Published: r.clock.Now(),
	})
	return messageID, nil
}
