package ssmengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "AmazonSSM"
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
	s.dispatcher.Handle("PutParameter", s.putParameter)
	s.dispatcher.Handle("GetParameter", s.getParameter)
	s.dispatcher.Handle("GetParameters", s.getParameters)
	s.dispatcher.Handle("DeleteParameter", s.deleteParameter)
	s.dispatcher.Handle("DescribeParameters", s.describeParameters)
	s.dispatcher.Handle("GetParametersByPath", s.getParametersByPath)
	s.dispatcher.Handle("AddTagsToResource", s.addTags)
	s.dispatcher.Handle("RemoveTagsFromResource", s.removeTags)
	s.dispatcher.Handle("ListTagsForResource", s.listTags)
	s.dispatcher.Handle("LabelParameterVersion", s.labelParameterVersion)
}

func (s *Server) putParameter(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.PutParameterInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.registry.PutParameter(s.clock.Now(), aws.ToString(input.Name), aws.ToString(input.Value), input.Type, aws.ToString(input.KeyId), input.Overwrite)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("parameter already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.PutParameterOutput{Version: p.Version})
}

func (s *Server) getParameter(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.GetParameterInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.registry.GetParameter(aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	withDecryption := input.WithDecryption != nil && *input.WithDecryption
	protocol.WriteJSONResult(rw, ContentType, &ssm.GetParameterOutput{
		Parameter: parameterOut(p, withDecryption),
	})
}

func parameterOut(p *Parameter, withDecryption bool) *types.Parameter {
	return &types.Parameter{
		Name:             aws.String(p.Name),
		Value:            aws.String(p.DecryptedValue(withDecryption)),
		Type:             p.Type,
		Version:          p.Version,
		LastModifiedDate: aws.Time(p.Modified),
	}
}

func (s *Server) getParameters(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.GetParametersInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	withDecryption := input.WithDecryption != nil && *input.WithDecryption
	var found []types.Parameter
	var invalid []string
	for _, name := range input.Names {
		if p, ok := s.registry.GetParameter(name); ok {
			found = append(found, *parameterOut(p, withDecryption))
		} else {
			invalid = append(invalid, name)
		}
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.GetParametersOutput{Parameters: found, InvalidParameters: invalid})
}

func (s *Server) deleteParameter(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.DeleteParameterInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteParameter(aws.ToString(input.Name)) {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.DeleteParameterOutput{})
}

func (s *Server) describeParameters(rw http.ResponseWriter, req *http.Request) {
	params := s.registry.DescribeParameters()
	out := make([]types.ParameterMetadata, 0, len(params))
	for _, p := range params {
		out = append(out, types.ParameterMetadata{
			Name:             aws.String(p.Name),
			Type:             p.Type,
			Version:          p.Version,
			LastModifiedDate: aws.Time(p.Modified),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.DescribeParametersOutput{Parameters: out})
}

func (s *Server) getParametersByPath(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.GetParametersByPathInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	withDecryption := input.WithDecryption != nil && *input.WithDecryption
	params := s.registry.ParametersByPath(aws.ToString(input.Path))
	out := make([]types.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, *parameterOut(p, withDecryption))
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.GetParametersByPathOutput{Parameters: out})
}

func (s *Server) addTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.AddTagsToResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.registry.GetParameter(aws.ToString(input.ResourceId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	for _, tag := range input.Tags {
		p.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.AddTagsToResourceOutput{})
}

func (s *Server) removeTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.RemoveTagsFromResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.registry.GetParameter(aws.ToString(input.ResourceId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	for _, key := range input.TagKeys {
		delete(p.Tags, key)
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.RemoveTagsFromResourceOutput{})
}

func (s *Server) listTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.ListTagsForResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	p, ok := s.registry.GetParameter(aws.ToString(input.ResourceId))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	var tags []types.Tag
	for k, v := range p.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.ListTagsForResourceOutput{TagList: tags})
}

func (s *Server) labelParameterVersion(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[ssm.LabelParameterVersionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.GetParameter(aws.ToString(input.Name)); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorParameterNotFound("parameter not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &ssm.LabelParameterVersionOutput{InvalidLabels: nil, ParameterVersion: aws.ToInt64(input.ParameterVersion)})
}
