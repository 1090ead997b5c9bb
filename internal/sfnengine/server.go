package sfnengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "AWSStepFunctions"
	ContentType   = "application/x-amz-json-1.0"
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
	s.dispatcher.Handle("CreateStateMachine", s.createStateMachine)
	s.dispatcher.Handle("DeleteStateMachine", s.deleteStateMachine)
	s.dispatcher.Handle("DescribeStateMachine", s.describeStateMachine)
	s.dispatcher.Handle("UpdateStateMachine", s.updateStateMachine)
	s.dispatcher.Handle("ListStateMachines", s.listStateMachines)
	s.dispatcher.Handle("StartExecution", s.startExecution)
	s.dispatcher.Handle("StopExecution", s.stopExecution)
	s.dispatcher.Handle("DescribeExecution", s.describeExecution)
	s.dispatcher.Handle("ListExecutions", s.listExecutions)
	s.dispatcher.Handle("GetExecutionHistory", s.getExecutionHistory)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListTagsForResource", s.listTagsForResource)
	s.dispatcher.Handle("CreateActivity", s.createActivity)
	s.dispatcher.Handle("DeleteActivity", s.deleteActivity)
	s.dispatcher.Handle("ListActivities", s.listActivities)
}

func (s *Server) createStateMachine(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.CreateStateMachineInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	sm, ok := s.registry.CreateStateMachine(s.clock.Now(), aws.ToString(input.Name), aws.ToString(input.Definition), aws.ToString(input.RoleArn), input.Type)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("state machine already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.CreateStateMachineOutput{
		StateMachineArn: aws.String(sm.ARN),
		CreationDate:    aws.Time(sm.Created),
	})
}

func (s *Server) deleteStateMachine(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.DeleteStateMachineInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	s.registry.DeleteStateMachine(aws.ToString(input.StateMachineArn))
	protocol.WriteJSONResult(rw, ContentType, &sfn.DeleteStateMachineOutput{})
}

func (s *Server) describeStateMachine(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.DescribeStateMachineInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	sm, ok := s.registry.GetStateMachine(aws.ToString(input.StateMachineArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("state machine not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.DescribeStateMachineOutput{
		StateMachineArn: aws.String(sm.ARN),
		Name:            aws.String(sm.Name),
		Definition:      aws.String(sm.Definition),
		RoleArn:         aws.String(sm.RoleARN),
		Type:            sm.Type,
		CreationDate:    aws.Time(sm.Created),
		Status:          types.StateMachineStatusActive,
	})
}

func (s *Server) updateStateMachine(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.UpdateStateMachineInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.UpdateStateMachine(aws.ToString(input.StateMachineArn), aws.ToString(input.Definition), aws.ToString(input.RoleArn)) {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("state machine not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.UpdateStateMachineOutput{UpdateDate: aws.Time(s.clock.Now())})
}

func (s *Server) listStateMachines(rw http.ResponseWriter, req *http.Request) {
	sms := s.registry.ListStateMachines()
	out := make([]types.StateMachineListItem, 0, len(sms))
	for _, sm := range sms {
		out = append(out, types.StateMachineListItem{
			StateMachineArn: aws.String(sm.ARN),
			Name:            aws.String(sm.Name),
			Type:            sm.Type,
			CreationDate:    aws.Time(sm.Created),
		})
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.ListStateMachinesOutput{StateMachines: out})
}

func (s *Server) startExecution(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.StartExecutionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if _, ok := s.registry.GetStateMachine(aws.ToString(input.StateMachineArn)); !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("state machine not found"))
		return
	}
	exec := s.registry.StartExecution(s.clock.Now(), aws.ToString(input.StateMachineArn), aws.ToString(input.Name), aws.ToString(input.Input))
	protocol.WriteJSONResult(rw, ContentType, &sfn.StartExecutionOutput{
		ExecutionArn: aws.String(exec.ARN),
		StartDate:    aws.Time(exec.Started),
	})
}

func (s *Server) stopExecution(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.StopExecutionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	now := s.clock.Now()
	if !s.registry.StopExecution(now, aws.ToString(input.ExecutionArn)) {
		protocol.WriteJSONError(rw, ContentType, ErrorExecutionDoesNotExist("execution not found"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.StopExecutionOutput{StopDate: aws.Time(now)})
}

func (s *Server) describeExecution(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.DescribeExecutionInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	exec, ok := s.registry.GetExecution(aws.ToString(input.ExecutionArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorExecutionDoesNotExist("execution not found"))
		return
	}
	output := &sfn.DescribeExecutionOutput{
		ExecutionArn:    aws.String(exec.ARN),
		StateMachineArn: aws.String(exec.StateMachineARN),
		Name:            aws.String(exec.Name),
		Status:          exec.Status,
		StartDate:       aws.Time(exec.Started),
		Input:           aws.String(exec.Input),
	}
	if exec.Stopped != nil {
		output.StopDate = aws.Time(*exec.Stopped)
	}
	protocol.WriteJSONResult(rw, ContentType, output)
}

func (s *Server) listExecutions(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.ListExecutionsInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	execs := s.registry.ListExecutions(aws.ToString(input.StateMachineArn), input.StatusFilter)
	out := make([]types.ExecutionListItem, 0, len(execs))
	for _, e := range execs {
		item := types.ExecutionListItem{
			ExecutionArn:    aws.String(e.ARN),
			StateMachineArn: aws.String(e.StateMachineARN),
			Name:            aws.String(e.Name),
			Status:          e.Status,
			StartDate:       aws.Time(e.Started),
		}
		if e.Stopped != nil {
			item.StopDate = aws.Time(*e.Stopped)
		}
		out = append(out, item)
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.ListExecutionsOutput{Executions: out})
}

func (s *Server) getExecutionHistory(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.GetExecutionHistoryInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	exec, ok := s.registry.GetExecution(aws.ToString(input.ExecutionArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorExecutionDoesNotExist("execution not found"))
		return
	}
	events := []types.HistoryEvent{
		{
			Id:        1,
			Timestamp: aws.Time(exec.Started),
			Type:      types.HistoryEventTypeExecutionStarted,
			ExecutionStartedEventDetails: &types.ExecutionStartedEventDetails{
				Input: aws.String(exec.Input),
			},
		},
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.GetExecutionHistoryOutput{Events: events})
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.TagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	sm, ok := s.registry.GetStateMachine(aws.ToString(input.ResourceArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	for _, tag := range input.Tags {
		sm.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.TagResourceOutput{})
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.UntagResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	sm, ok := s.registry.GetStateMachine(aws.ToString(input.ResourceArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	for _, key := range input.TagKeys {
		delete(sm.Tags, key)
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.UntagResourceOutput{})
}

func (s *Server) listTagsForResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.ListTagsForResourceInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	sm, ok := s.registry.GetStateMachine(aws.ToString(input.ResourceArn))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorResourceNotFound("resource not found"))
		return
	}
	var tags []types.Tag
	for k, v := range sm.tagsSnapshot() {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.ListTagsForResourceOutput{Tags: tags})
}

func (s *Server) createActivity(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.CreateActivityInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	a, ok := s.registry.CreateActivity(s.clock.Now(), aws.ToString(input.Name))
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("activity already exists"))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.CreateActivityOutput{ActivityArn: aws.String(a.ARN), CreationDate: aws.Time(a.Created)})
}

func (s *Server) deleteActivity(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[sfn.DeleteActivityInput](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	s.registry.DeleteActivity(aws.ToString(input.ActivityArn))
	protocol.WriteJSONResult(rw, ContentType, &sfn.DeleteActivityOutput{})
}

func (s *Server) listActivities(rw http.ResponseWriter, req *http.Request) {
	activities := s.registry.ListActivities()
	out := make([]types.ActivityListItem, 0, len(activities))
	for _, a := range activities {
		out = append(out, types.ActivityListItem{ActivityArn: aws.String(a.ARN), Name: aws.String(a.Name), CreationDate: aws.Time(a.Created)})
	}
	protocol.WriteJSONResult(rw, ContentType, &sfn.ListActivitiesOutput{Activities: out})
}
