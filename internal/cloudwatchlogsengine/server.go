package cloudwatchlogsengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "Logs_20140328"
	ContentType   = "application/x-amz-json-1.1"
)

func NewServer(clock clockwork.Clock) *Server {
	s := &Server{clock: clock, registry: NewRegistry()}
	s.dispatcher = protocol.NewJSONDispatcher(ServicePrefix, ContentType)
	s.registerRoutes()
	return s
}

type Server struct {
	clock      clockwork.Clock
	registry   *Registry
	dispatcher *protocol.JSONDispatcher
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.dispatcher.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateLogGroup", s.createLogGroup)
	s.dispatcher.Handle("DeleteLogGroup", s.deleteLogGroup)
	s.dispatcher.Handle("DescribeLogGroups", s.describeLogGroups)
	s.dispatcher.Handle("CreateLogStream", s.createLogStream)
	s.dispatcher.Handle("DeleteLogStream", s.deleteLogStream)
	s.dispatcher.Handle("DescribeLogStreams", s.describeLogStreams)
	s.dispatcher.Handle("PutLogEvents", s.putLogEvents)
	s.dispatcher.Handle("GetLogEvents", s.getLogEvents)
	s.dispatcher.Handle("FilterLogEvents", s.filterLogEvents)
	s.dispatcher.Handle("PutRetentionPolicy", s.putRetentionPolicy)
	s.dispatcher.Handle("DeleteRetentionPolicy", s.deleteRetentionPolicy)
	s.dispatcher.Handle("TagLogGroup", s.tagLogGroup)
	s.dispatcher.Handle("UntagLogGroup", s.untagLogGroup)
	s.dispatcher.Handle("ListTagsLogGroup", s.listTagsLogGroup)
	s.dispatcher.Handle("PutSubscriptionFilter", s.putSubscriptionFilter)
	s.dispatcher.Handle("DeleteSubscriptionFilter", s.deleteSubscriptionFilter)
	s.dispatcher.Handle("DescribeSubscriptionFilters", s.describeSubscriptionFilters)
}

func (s *Server) createLogGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.CreateLogGroupInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.CreateLogGroup(s.clock.Now(), aws.ToString(input.LogGroupName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceAlreadyExists("log group already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.CreateLogGroupOutput{})
}

func (s *Server) deleteLogGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DeleteLogGroupInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteLogGroup(aws.ToString(input.LogGroupName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DeleteLogGroupOutput{})
}

func (s *Server) describeLogGroups(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DescribeLogGroupsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	groups := s.registry.DescribeLogGroups(aws.ToString(input.LogGroupNamePrefix))
	out := make([]types.LogGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.LogGroup{
			LogGroupName:    aws.String(g.Name),
			CreationTime:    aws.Int64(g.Created.UnixMilli()),
			RetentionInDays: g.RetentionInDays,
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DescribeLogGroupsOutput{LogGroups: out})
}

func (s *Server) createLogStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.CreateLogStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	if !group.CreateLogStream(s.clock.Now(), aws.ToString(input.LogStreamName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceAlreadyExists("log stream already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.CreateLogStreamOutput{})
}

func (s *Server) deleteLogStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DeleteLogStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok || !group.DeleteLogStream(aws.ToString(input.LogStreamName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DeleteLogStreamOutput{})
}

func (s *Server) describeLogStreams(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DescribeLogStreamsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	streams := group.DescribeLogStreams(aws.ToString(input.LogStreamNamePrefix))
	out := make([]types.LogStream, 0, len(streams))
	for _, st := range streams {
		out = append(out, types.LogStream{
			LogStreamName: aws.String(st.Name),
			CreationTime:  aws.Int64(st.Created.UnixMilli()),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DescribeLogStreamsOutput{LogStreams: out})
}

func (s *Server) putLogEvents(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.PutLogEventsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	stream, ok := group.GetLogStream(aws.ToString(input.LogStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log stream not found"))
		return
	}
	stream.PutEvents(s.clock.Now(), input.LogEvents)
	// Sequence tokens are accepted unconditionally and never validated,
	// per Open Question #4.
	protocol.WriteJSONResult(rw, ContentType, struct {
		NextSequenceToken *string `json:"nextSequenceToken"`
	}{NextSequenceToken: aws.String(protocol.NewRequestID())})
}

func (s *Server) getLogEvents(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.GetLogEventsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	stream, ok := group.GetLogStream(aws.ToString(input.LogStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log stream not found"))
		return
	}
	var events []types.OutputLogEvent
	for _, e := range stream.Events() {
		events = append(events, types.OutputLogEvent{
			Timestamp:     aws.Int64(e.Timestamp),
			Message:       aws.String(e.Message),
			IngestionTime: aws.Int64(e.IngestionTime),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.GetLogEventsOutput{Events: events})
}

func (s *Server) filterLogEvents(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.FilterLogEventsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	streamNames := input.LogStreamNames
	if len(streamNames) == 0 {
		for _, st := range group.DescribeLogStreams("") {
			streamNames = append(streamNames, st.Name)
		}
	}
	var matched []types.FilteredLogEvent
	for _, name := range streamNames {
		stream, ok := group.GetLogStream(name)
		if !ok {
			continue
		}
		for _, e := range stream.FilterEvents(aws.ToString(input.FilterPattern)) {
			matched = append(matched, types.FilteredLogEvent{
				LogStreamName: aws.String(name),
				Timestamp:     aws.Int64(e.Timestamp),
				Message:       aws.String(e.Message),
				IngestionTime: aws.Int64(e.IngestionTime),
			})
		}
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.FilterLogEventsOutput{Events: matched})
}

func (s *Server) putRetentionPolicy(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.PutRetentionPolicyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	days := input.RetentionInDays
	group.RetentionInDays = &days
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.PutRetentionPolicyOutput{})
}

func (s *Server) deleteRetentionPolicy(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DeleteRetentionPolicyInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	group.RetentionInDays = nil
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DeleteRetentionPolicyOutput{})
}

func (s *Server) tagLogGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.TagLogGroupInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	for k, v := range input.Tags {
		group.Tags[k] = v
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.TagLogGroupOutput{})
}

func (s *Server) untagLogGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.UntagLogGroupInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	for _, key := range input.Tags {
		delete(group.Tags, key)
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.UntagLogGroupOutput{})
}

func (s *Server) listTagsLogGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.ListTagsLogGroupInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.ListTagsLogGroupOutput{Tags: group.tagsSnapshot()})
}

func (s *Server) putSubscriptionFilter(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.PutSubscriptionFilterInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	group.PutSubscriptionFilter(SubscriptionFilter{
		Name:           aws.ToString(input.FilterName),
		FilterPattern:  aws.ToString(input.FilterPattern),
		DestinationARN: aws.ToString(input.DestinationArn),
	})
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.PutSubscriptionFilterOutput{})
}

func (s *Server) deleteSubscriptionFilter(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DeleteSubscriptionFilterInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	group.DeleteSubscriptionFilter(aws.ToString(input.FilterName))
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DeleteSubscriptionFilterOutput{})
}

func (s *Server) describeSubscriptionFilters(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[cloudwatchlogs.DescribeSubscriptionFiltersInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	group, ok := s.registry.GetLogGroup(aws.ToString(input.LogGroupName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("log group not found"))
		return
	}
	var out []types.SubscriptionFilter
	for _, f := range group.subscriptionFiltersSnapshot() {
		out = append(out, types.SubscriptionFilter{
			FilterName:     aws.String(f.Name),
			FilterPattern:  aws.String(f.FilterPattern),
			DestinationArn: aws.String(f.DestinationARN),
			LogGroupName:   aws.String(group.Name),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &cloudwatchlogs.DescribeSubscriptionFiltersOutput{SubscriptionFilters: out})
}
