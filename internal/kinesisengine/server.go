package kinesisengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "Kinesis_20131202"
	ContentType   = "application/x-amz-json-1.1"
)

// NewServer returns a new Kinesis AWS-JSON server.
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

func (s *Server) Registry() *Registry { return s.registry }

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateStream", s.createStream)
	s.dispatcher.Handle("DeleteStream", s.deleteStream)
	s.dispatcher.Handle("DescribeStream", s.describeStream)
	s.dispatcher.Handle("ListStreams", s.listStreams)
	s.dispatcher.Handle("ListShards", s.listShards)
	s.dispatcher.Handle("PutRecord", s.putRecord)
	s.dispatcher.Handle("PutRecords", s.putRecords)
	s.dispatcher.Handle("GetShardIterator", s.getShardIterator)
	s.dispatcher.Handle("GetRecords", s.getRecords)
	s.dispatcher.Handle("IncreaseStreamRetentionPeriod", s.increaseRetention)
	s.dispatcher.Handle("DecreaseStreamRetentionPeriod", s.decreaseRetention)
	s.dispatcher.Handle("MergeShards", s.mergeShards)
	s.dispatcher.Handle("SplitShard", s.splitShard)
	s.dispatcher.Handle("AddTagsToStream", s.addTags)
	s.dispatcher.Handle("ListTagsForStream", s.listTags)
}

func (s *Server) createStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.CreateStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	name := aws.ToString(input.StreamName)
	shardCount := int32(1)
	if input.ShardCount != nil {
		shardCount = *input.ShardCount
	}
	if _, ok := s.registry.CreateStream(s.clock.Now(), name, shardCount); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceInUse("stream already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.CreateStreamOutput{})
}

func (s *Server) deleteStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.DeleteStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteStream(aws.ToString(input.StreamName)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.DeleteStreamOutput{})
}

func (s *Server) describeStream(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.DescribeStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.DescribeStreamOutput{
		StreamDescription: describeStream(stream),
	})
}

func describeStream(stream *Stream) *types.StreamDescription {
	desc := &types.StreamDescription{
		StreamName:      aws.String(stream.Name),
		StreamARN:       aws.String(stream.ARN),
		StreamStatus:    stream.Status,
		StreamCreationTimestamp: aws.Time(stream.Created),
		RetentionPeriodHours: aws.Int32(stream.RetentionHours),
		HasMoreShards:   aws.Bool(false),
	}
	for _, sh := range stream.Shards {
		desc.Shards = append(desc.Shards, types.Shard{ShardId: aws.String(sh.ShardID)})
	}
	return desc
}

func (s *Server) listStreams(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, &kinesis.ListStreamsOutput{
		StreamNames: s.registry.ListStreams(),
		HasMoreStreams: aws.Bool(false),
	})
}

func (s *Server) listShards(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.ListShardsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	var shards []types.Shard
	for _, sh := range stream.Shards {
		shards = append(shards, types.Shard{ShardId: aws.String(sh.ShardID)})
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.ListShardsOutput{Shards: shards})
}

func (s *Server) putRecord(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.PutRecordInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	shard := stream.shardByPartitionKey(aws.ToString(input.PartitionKey))
	rec := shard.putRecord(s.clock.Now(), input.Data, aws.ToString(input.PartitionKey))
	protocol.WriteJSONResult(rw, ContentType, &kinesis.PutRecordOutput{
		ShardId:        aws.String(shard.ShardID),
		SequenceNumber: rec.SequenceNumber,
	})
}

func (s *Server) putRecords(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.PutRecordsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	results := make([]types.PutRecordsResultEntry, 0, len(input.Records))
	for _, entry := range input.Records {
		shard := stream.shardByPartitionKey(aws.ToString(entry.PartitionKey))
		rec := shard.putRecord(s.clock.Now(), entry.Data, aws.ToString(entry.PartitionKey))
		results = append(results, types.PutRecordsResultEntry{
			ShardId:        aws.String(shard.ShardID),
			SequenceNumber: rec.SequenceNumber,
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.PutRecordsOutput{
		Records:    results,
		FailedRecordCount: aws.Int32(0),
	})
}

func (s *Server) getShardIterator(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.GetShardIteratorInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	shard, ok := stream.shard(aws.ToString(input.ShardId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("shard not found"))
		return
	}
	token := s.registry.NewShardIterator(stream, shard, input.ShardIteratorType, aws.ToString(input.StartingSequenceNumber))
	protocol.WriteJSONResult(rw, ContentType, &kinesis.GetShardIteratorOutput{ShardIterator: aws.String(token)})
}

func (s *Server) getRecords(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.GetRecordsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	limit := 1000
	if input.Limit != nil {
		limit = int(*input.Limit)
	}
	records, nextToken, ok := s.registry.GetRecords(aws.ToString(input.ShardIterator), limit)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorInvalidArgument("invalid shard iterator"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.GetRecordsOutput{
		Records:           records,
		NextShardIterator: aws.String(nextToken),
		MillisBehindLatest: aws.Int64(0),
	})
}

func (s *Server) increaseRetention(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.IncreaseStreamRetentionPeriodInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	if input.RetentionPeriodHours != nil && *input.RetentionPeriodHours > stream.RetentionHours {
		stream.RetentionHours = *input.RetentionPeriodHours
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.IncreaseStreamRetentionPeriodOutput{})
}

func (s *Server) decreaseRetention(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.DecreaseStreamRetentionPeriodInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	if input.RetentionPeriodHours != nil && *input.RetentionPeriodHours < stream.RetentionHours {
		stream.RetentionHours = *input.RetentionPeriodHours
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.DecreaseStreamRetentionPeriodOutput{})
}

// mergeShards and splitShard accept the request and acknowledge success
// without reshaping the shard topology; this emulator fixes shard count
// at stream creation (spec.md §4.4).
func (s *Server) mergeShards(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.MergeShardsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.GetStream(aws.ToString(input.StreamName)); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.MergeShardsOutput{})
}

func (s *Server) splitShard(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.SplitShardInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.GetStream(aws.ToString(input.StreamName)); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.SplitShardOutput{})
}

func (s *Server) addTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.AddTagsToStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	for k, v := range input.Tags {
		stream.Tags[k] = v
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.AddTagsToStreamOutput{})
}

func (s *Server) listTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[kinesis.ListTagsForStreamInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	stream, ok := s.registry.GetStream(aws.ToString(input.StreamName))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("stream not found"))
		return
	}
	var tags []types.Tag
	for k, v := range stream.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &kinesis.ListTagsForStreamOutput{Tags: tags})
}
