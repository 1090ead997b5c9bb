package snsengine

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

// NewServer returns a new SNS AWS-Query server backed by the given clock.
func NewServer(clock clockwork.Clock, region, accountID string) *Server {
	s := &Server{
		registry: NewRegistry(clock, region, accountID),
	}
	s.dispatcher = protocol.NewQueryDispatcher()
	s.registerRoutes()
	return s
}

// Server implements the SNS AWS-Query HTTP front-end.
type Server struct {
	registry   *Registry
	dispatcher *protocol.QueryDispatcher
}

var _ http.Handler = (*Server)(nil)

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.dispatcher.ServeHTTP(rw, req)
}

// Registry returns the underlying topic/subscription store, used by the
// admin introspection surface.
func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateTopic", s.createTopic)
	s.dispatcher.Handle("DeleteTopic", s.deleteTopic)
	s.dispatcher.Handle("ListTopics", s.listTopics)
	s.dispatcher.Handle("GetTopicAttributes", s.getTopicAttributes)
	s.dispatcher.Handle("SetTopicAttributes", s.setTopicAttributes)
	s.dispatcher.Handle("Subscribe", s.subscribe)
	s.dispatcher.Handle("ConfirmSubscription", s.confirmSubscription)
	s.dispatcher.Handle("Unsubscribe", s.unsubscribe)
	s.dispatcher.Handle("ListSubscriptions", s.listSubscriptions)
	s.dispatcher.Handle("ListSubscriptionsByTopic", s.listSubscriptionsByTopic)
	s.dispatcher.Handle("GetSubscriptionAttributes", s.getSubscriptionAttributes)
	s.dispatcher.Handle("SetSubscriptionAttributes", s.setSubscriptionAttributes)
	s.dispatcher.Handle("Publish", s.publish)
	s.dispatcher.Handle("PublishBatch", s.publishBatch)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListTagsForResource", s.listTagsForResource)
}

func tagsFromForm(values url.Values) map[string]string {
	out := make(map[string]string)
	for i := 1; ; i++ {
		key := values.Get(fmt.Sprintf("Tags.member.%d.Key", i))
		if key == "" {
			break
		}
		out[key] = values.Get(fmt.Sprintf("Tags.member.%d.Value", i))
	}
	return out
}

func attributesFromForm(values url.Values, entryPrefix string) map[string]string {
	out := make(map[string]string)
	for i := 1; ; i++ {
		key := values.Get(fmt.Sprintf("%s.entry.%d.key", entryPrefix, i))
		if key == "" {
			break
		}
		out[key] = values.Get(fmt.Sprintf("%s.entry.%d.value", entryPrefix, i))
	}
	return out
}

func (s *Server) createTopic(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	name := values.Get("Name")
	attrs := attributesFromForm(values, "Attributes")
	tags := tagsFromForm(values)
	topic, err := s.registry.CreateTopic(name, attrs, tags)
	if err != nil {
		protocol.WriteQueryError(rw, err)
		return
	}
	resp := xmlCreateTopicResponse{XMLNS: XMLNamespace}
	resp.Result.TopicArn = topic.ARN
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) deleteTopic(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	s.registry.DeleteTopic(values.Get("TopicArn"))
	resp := xmlDeleteTopicResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) listTopics(rw http.ResponseWriter, _ *http.Request, _ url.Values) {
	resp := xmlListTopicsResponse{XMLNS: XMLNamespace}
	for _, t := range s.registry.ListTopics() {
		resp.Result.Topics = append(resp.Result.Topics, xmlTopicEntry{TopicArn: t.ARN})
	}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) getTopicAttributes(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topic, ok := s.registry.GetTopic(values.Get("TopicArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorTopicNotFound())
		return
	}
	resp := xmlGetTopicAttributesResponse{XMLNS: XMLNamespace}
	resp.Result.Attributes = entriesOf(topic.attributesSnapshot())
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) setTopicAttributes(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topic, ok := s.registry.GetTopic(values.Get("TopicArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorTopicNotFound())
		return
	}
	topic.setAttribute(values.Get("AttributeName"), values.Get("AttributeValue"))
	resp := xmlSetTopicAttributesResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) subscribe(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	sub, err := s.registry.Subscribe(values.Get("TopicArn"), values.Get("Protocol"), values.Get("Endpoint"))
	if err != nil {
		protocol.WriteQueryError(rw, err)
		return
	}
	resp := xmlSubscribeResponse{XMLNS: XMLNamespace}
	resp.Result.SubscriptionArn = sub.ARN
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) confirmSubscription(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	sub, err := s.registry.ConfirmSubscription(values.Get("TopicArn"), values.Get("Token"))
	if err != nil {
		protocol.WriteQueryError(rw, err)
		return
	}
	resp := xmlConfirmSubscriptionResponse{XMLNS: XMLNamespace}
	resp.Result.SubscriptionArn = sub.ARN
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) unsubscribe(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	s.registry.Unsubscribe(values.Get("SubscriptionArn"))
	resp := xmlUnsubscribeResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func asSubscriptionEntries(subs []*Subscription) []xmlSubscriptionEntry {
	out := make([]xmlSubscriptionEntry, 0, len(subs))
	for _, s := range subs {
		out = append(out, xmlSubscriptionEntry{
			SubscriptionArn: s.ARN,
			TopicArn:        s.TopicARN,
			Protocol:        s.Protocol,
			Endpoint:        s.Endpoint,
			Owner:           s.Owner,
		})
	}
	return out
}

func (s *Server) listSubscriptions(rw http.ResponseWriter, _ *http.Request, _ url.Values) {
	resp := xmlListSubscriptionsResponse{XMLNS: XMLNamespace}
	resp.Result.Subscriptions = asSubscriptionEntries(s.registry.ListSubscriptions())
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) listSubscriptionsByTopic(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	resp := xmlListSubscriptionsByTopicResponse{XMLNS: XMLNamespace}
	resp.Result.Subscriptions = asSubscriptionEntries(s.registry.ListSubscriptionsByTopic(values.Get("TopicArn")))
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) getSubscriptionAttributes(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	sub, ok := s.registry.GetSubscription(values.Get("SubscriptionArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorSubscriptionNotFound())
		return
	}
	resp := xmlGetSubscriptionAttributesResponse{XMLNS: XMLNamespace}
	resp.Result.Attributes = entriesOf(sub.Attributes)
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) setSubscriptionAttributes(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	sub, ok := s.registry.GetSubscription(values.Get("SubscriptionArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorSubscriptionNotFound())
		return
	}
	sub.Attributes[values.Get("AttributeName")] = values.Get("AttributeValue")
	resp := xmlSetSubscriptionAttributesResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) publish(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	messageID, err := s.registry.Publish(values.Get("TopicArn"), values.Get("Subject"), values.Get("Message"))
	if err != nil {
		protocol.WriteQueryError(rw, err)
		return
	}
	resp := xmlPublishResponse{XMLNS: XMLNamespace}
	resp.Result.MessageId = messageID
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) publishBatch(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topicARN := values.Get("TopicArn")
	resp := xmlPublishBatchResponse{XMLNS: XMLNamespace}
	for i := 1; ; i++ {
		prefix := fmt.Sprintf("PublishBatchRequestEntries.member.%d", i)
		id := values.Get(prefix + ".Id")
		if id == "" {
			break
		}
		messageID, err := s.registry.Publish(topicARN, values.Get(prefix+".Subject"), values.Get(prefix+".Message"))
		if err != nil {
			protocol.WriteQueryError(rw, err)
			return
		}
		resp.Result.Successful = append(resp.Result.Successful, xmlPublishBatchResultEntry{Id: id, MessageId: messageID})
	}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) tagResource(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topic, ok := s.registry.GetTopic(values.Get("ResourceArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorTopicNotFound())
		return
	}
	if err := topic.tag(tagsFromForm(values)); err != nil {
		protocol.WriteQueryError(rw, err)
		return
	}
	resp := xmlTagResourceResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) untagResource(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topic, ok := s.registry.GetTopic(values.Get("ResourceArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorTopicNotFound())
		return
	}
	var keys []string
	for i := 1; ; i++ {
		k := values.Get(fmt.Sprintf("TagKeys.member.%d", i))
		if k == "" {
			break
		}
		keys = append(keys, k)
	}
	topic.untag(keys)
	resp := xmlUntagResourceResponse{XMLNS: XMLNamespace}
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}

func (s *Server) listTagsForResource(rw http.ResponseWriter, _ *http.Request, values url.Values) {
	topic, ok := s.registry.GetTopic(values.Get("ResourceArn"))
	if !ok {
		protocol.WriteQueryError(rw, ErrorTopicNotFound())
		return
	}
	resp := xmlListTagsForResourceResponse{XMLNS: XMLNamespace}
	resp.Result.Tags = entriesOf(topic.tagsSnapshot())
	resp.ResponseMetadata.RequestID = protocol.NewRequestID()
	protocol.WriteQueryResult(rw, resp)
}
