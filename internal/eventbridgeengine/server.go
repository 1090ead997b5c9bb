package eventbridgeengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "AWSEvents"
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
	s.dispatcher.Handle("PutRule", s.putRule)
	s.dispatcher.Handle("DeleteRule", s.deleteRule)
	s.dispatcher.Handle("DescribeRule", s.describeRule)
	s.dispatcher.Handle("ListRules", s.listRules)
	s.dispatcher.Handle("EnableRule", s.enableRule)
	s.dispatcher.Handle("DisableRule", s.disableRule)
	s.dispatcher.Handle("PutTargets", s.putTargets)
	s.dispatcher.Handle("RemoveTargets", s.removeTargets)
	s.dispatcher.Handle("ListTargetsByRule", s.listTargets)
	s.dispatcher.Handle("PutEvents", s.putEvents)
	s.dispatcher.Handle("PutPermission", s.putPermission)
	s.dispatcher.Handle("RemovePermission", s.removePermission)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListTagsForResource", s.listTagsForResource)
	s.dispatcher.Handle("CreateEventBus", s.createEventBus)
	s.dispatcher.Handle("DeleteEventBus", s.deleteEventBus)
}

func (s *Server) putRule(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.PutRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule := s.registry.PutRule(aws.ToString(input.EventBusName), aws.ToString(input.Name), aws.ToString(input.EventPattern), aws.ToString(input.ScheduleExpression))
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.PutRuleOutput{RuleArn: aws.String(rule.ARN)})
}

func (s *Server) deleteRule(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.DeleteRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteRule(aws.ToString(input.EventBusName), aws.ToString(input.Name)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.DeleteRuleOutput{})
}

func (s *Server) describeRule(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.DescribeRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule, ok := s.registry.GetRule(aws.ToString(input.EventBusName), aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.DescribeRuleOutput{
		Name:         aws.String(rule.Name),
		Arn:          aws.String(rule.ARN),
		EventPattern: aws.String(rule.EventPattern),
		State:        rule.State,
	})
}

func (s *Server) listRules(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.ListRulesInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rules := s.registry.ListRules(aws.ToString(input.EventBusName))
	out := make([]types.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, types.Rule{Name: aws.String(rule.Name), Arn: aws.String(rule.ARN), State: rule.State})
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.ListRulesOutput{Rules: out})
}

func (s *Server) enableRule(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.EnableRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule, ok := s.registry.GetRule(aws.ToString(input.EventBusName), aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	rule.State = types.RuleStateEnabled
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.EnableRuleOutput{})
}

func (s *Server) disableRule(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.DisableRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule, ok := s.registry.GetRule(aws.ToString(input.EventBusName), aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	rule.State = types.RuleStateDisabled
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.DisableRuleOutput{})
}

func (s *Server) putTargets(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.PutTargetsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.PutTargets(aws.ToString(input.EventBusName), aws.ToString(input.Rule), input.Targets); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.PutTargetsOutput{FailedEntryCount: 0})
}

func (s *Server) removeTargets(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.RemoveTargetsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.RemoveTargets(aws.ToString(input.EventBusName), aws.ToString(input.Rule), input.Ids); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.RemoveTargetsOutput{FailedEntryCount: 0})
}

func (s *Server) listTargets(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.ListTargetsByRuleInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	targets, ok := s.registry.ListTargets(aws.ToString(input.EventBusName), aws.ToString(input.Rule))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("rule not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.ListTargetsByRuleOutput{Targets: targets})
}

func (s *Server) putEvents(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.PutEventsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	now := s.clock.Now()
	entries := make([]PutEventEntry, 0, len(input.Entries))
	results := make([]types.PutEventsResultEntry, 0, len(input.Entries))
	for _, e := range input.Entries {
		entries = append(entries, PutEventEntry{
			Source:     aws.ToString(e.Source),
			DetailType: aws.ToString(e.DetailType),
			Detail:     aws.ToString(e.Detail),
			Time:       now,
		})
		results = append(results, types.PutEventsResultEntry{EventId: aws.String(protocol.NewRequestID())})
	}
	s.registry.RecordPutEvents(entries)
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.PutEventsOutput{Entries: results, FailedEntryCount: 0})
}

func (s *Server) putPermission(rw http.ResponseWriter, req *http.Request) {
	if _, jerr := protocol.DecodeJSON[eventbridge.PutPermissionInput](req); jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.PutPermissionOutput{})
}

func (s *Server) removePermission(rw http.ResponseWriter, req *http.Request) {
	if _, jerr := protocol.DecodeJSON[eventbridge.RemovePermissionInput](req); jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.RemovePermissionOutput{})
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.TagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule := s.ruleByARN(aws.ToString(input.ResourceARN))
	if rule == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	for _, tag := range input.Tags {
		rule.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.TagResourceOutput{})
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.UntagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule := s.ruleByARN(aws.ToString(input.ResourceARN))
	if rule == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	for _, key := range input.TagKeys {
		delete(rule.Tags, key)
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.UntagResourceOutput{})
}

func (s *Server) listTagsForResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.ListTagsForResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	rule := s.ruleByARN(aws.ToString(input.ResourceARN))
	if rule == nil {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	var tags []types.Tag
	for k, v := range rule.Tags {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.ListTagsForResourceOutput{Tags: tags})
}

func (s *Server) createEventBus(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.CreateEventBusInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	bus, ok := s.registry.CreateEventBus(aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("event bus already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.CreateEventBusOutput{EventBusArn: aws.String(bus.ARN)})
}

func (s *Server) deleteEventBus(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[eventbridge.DeleteEventBusInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteEventBus(aws.ToString(input.Name)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("event bus not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &eventbridge.DeleteEventBusOutput{})
}

// ruleByARN resolves a rule ARN suffix (.../rule/<name>) back to its Rule,
// scanning the default bus first since that is where PutRule without an
// explicit EventBusName lands.
func (s *Server) ruleByARN(arn string) *Rule {
	idx := len(arn) - 1
	for idx >= 0 && arn[idx] != '/' {
		idx--
	}
	name := arn
	if idx >= 0 {
		name = arn[idx+1:]
	}
	if rule, ok := s.registry.GetRule("", name); ok {
		return rule
	}
	var found *Rule
	s.registry.EachBus(func(b *EventBus) bool {
		if rule, ok := b.Rules[name]; ok {
			found = rule
			return false
		}
		return true
	})
	return found
}
