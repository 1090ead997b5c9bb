package firehoseengine

import (
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "Firehose_20150804"
	ContentType   = "application/x-amz-json-1.1"
)

func NewServer(clock clockwork.Clock, region, account string) *Server {
	s := &Server{clock: clock, registry: NewRegistry(region, account)}
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
	s.dispatcher.Handle("CreateDeliveryStream", s.createDeliveryStream)
	s.dispatcher.Handle("DeleteDeliveryStream", s.deleteDeliveryStream)
	s.dispatcher.Handle("DescribeDeliveryStream", s.describeDeliveryStream)
	s.dispatcher.Handle("ListDeliveryStreams", s.listDeliveryStreams)
	s.dispatcher.Handle("PutRecord", s.putRecord)
	s.dispatcher.Handle("PutRecordBatch", s.putRecordBatch)
	s.dispatcher.Handle("UpdateDestination", s.updateDestination)
	s.dispatcher.Handle("TagDeliveryStream", s.tagDeliveryStream)
	s.dispatcher.Handle("UntagDeliveryStream", s.untagDeliveryStream)
	s.dispatcher.Handle("ListTagsForDeliveryStream", s.listTags)
}

func (s *Server) createDeliveryStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.CreateDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	name := aws.ToString(input.DeliveryStreamName)
	stream, ok := s.registry.CreateDeliveryStream(s.clock.Now(), name)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceInUse("delivery stream already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.CreateDeliveryStreamOutput{
		DeliveryStreamARN: aws.String(stream.ARN),
	})
}

func (s *Server) deleteDeliveryStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.DeleteDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteDeliveryStream(aws.ToString(input.DeliveryStreamName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.DeleteDeliveryStreamOutput{})
}

func (s *Server) describeDeliveryStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.DescribeDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.DescribeDeliveryStreamOutput{
		DeliveryStreamDescription: &types.DeliveryStreamDescription{
			DeliveryStreamName:   aws.String(stream.Name),
			DeliveryStreamARN:    aws.String(stream.ARN),
			DeliveryStreamStatus: stream.Status,
			HasMoreDestinations:  false,
		},
	})
}

func (s *Server) listDeliveryStreams(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, &firehose.ListDeliveryStreamsOutput{
		DeliveryStreamNames: s.registry.ListDeliveryStreams(),
		HasMoreDeliveryStreams: aws.Bool(false),
	})
}

func (s *Server) putRecord(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.PutRecordInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	stream.putRecord(input.Record.Data)
	protocol.WriteJSONResult(rw, ContentType, &firehose.PutRecordOutput{
		RecordId: aws.String(recordID(stream.recordCount())),
	})
}

func (s *Server) putRecordBatch(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.PutRecordBatchInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	results := make([]types.PutRecordBatchResponseEntry, 0, len(input.Records))
	for _, rec := range input.Records {
		stream.putRecord(rec.Data)
		results = append(results, types.PutRecordBatchResponseEntry{
			RecordId: aws.String(recordID(stream.recordCount())),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.PutRecordBatchOutput{
		RequestResponses: results,
		FailedPutCount:   aws.Int32(0),
	})
}

func (s *Server) updateDestination(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.UpdateDestinationInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName)); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.UpdateDestinationOutput{})
}

func (s *Server) tagDeliveryStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.TagDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	for _, tag := range input.Tags {
		stream.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.TagDeliveryStreamOutput{})
}

func (s *Server) untagDeliveryStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.UntagDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	for _, key := range input.TagKeys {
		delete(stream.Tags, key)
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.UntagDeliveryStreamOutput{})
}

func (s *Server) listTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[firehose.ListTagsForDeliveryStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetDeliveryStream(aws.ToString(input.DeliveryStreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("delivery stream not found"))
		return
	}
	var tags []types.Tag
	for k, v := range stream.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &firehose.ListTagsForDeliveryStreamOutput{Tags: tags, HasMoreTags: false})
}

func recordID(seq int) string {
	return protocol.NewRequestID()[:8] + "-" + strconv.Itoa(seq)
}
