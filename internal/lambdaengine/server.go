package lambdaengine

import (
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

func NewServer(clock clockwork.Clock, region, account string) *Server {
	s := &Server{clock: clock, registry: NewRegistry(region, account)}
	s.router = protocol.NewRestRouter()
	s.registerRoutes()
	return s
}

type Server struct {
	clock    clockwork.Clock
	registry *Registry
	router   *protocol.RestRouter
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.router.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.router.Handle(http.MethodPost, "/2015-03-31/functions", s.createFunction)
	s.router.Handle(http.MethodGet, "/2015-03-31/functions", s.listFunctions)
	s.router.Handle(http.MethodGet, "/2015-03-31/functions/{FunctionName}", s.getFunction)
	s.router.Handle(http.MethodDelete, "/2015-03-31/functions/{FunctionName}", s.deleteFunction)
	s.router.Handle(http.MethodPut, "/2015-03-31/functions/{FunctionName}/code", s.updateFunctionCode)
	s.router.Handle(http.MethodPut, "/2015-03-31/functions/{FunctionName}/configuration", s.updateFunctionConfiguration)
	s.router.Handle(http.MethodPost, "/2015-03-31/functions/{FunctionName}/invocations", s.invoke)
}

func configuration(f *Function) types.FunctionConfiguration {
	return types.FunctionConfiguration{
		FunctionName: aws.String(f.Name),
		FunctionArn:  aws.String(f.ARN),
		Runtime:      types.Runtime(f.Runtime),
		Handler:      aws.String(f.Handler),
		Role:         aws.String(f.Role),
		CodeSize:     f.CodeSize,
		CodeSha256:   aws.String(f.CodeSHA256),
		Description:  aws.String(f.Description),
		Timeout:      aws.Int32(f.Timeout),
		MemorySize:   aws.Int32(f.MemorySize),
		State:        types.State(f.State),
		LastModified: aws.String(f.LastModified.Format("2006-01-02T15:04:05.000+0000")),
		Environment:  &types.EnvironmentResponse{Variables: f.Environment},
	}
}

type createFunctionRequest struct {
	FunctionName string
	Runtime      string
	Handler      string
	Role         string
	Description  string
	Timeout      int32
	MemorySize   int32
	Code         struct {
		ZipFile []byte
	}
	Environment struct {
		Variables map[string]string
	}
	Tags map[string]string
}

func (s *Server) createFunction(rw http.ResponseWriter, req *http.Request) {
	input, rerr := protocol.DecodeRestJSON[createFunctionRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	f, ok := s.registry.CreateFunction(s.clock.Now(), input.FunctionName, input.Runtime, input.Handler, input.Role, input.Code.ZipFile, input.Environment.Variables, input.Tags, input.Timeout, input.MemorySize)
	if !ok {
		protocol.WriteRestError(rw, ErrorAlreadyExists("function already exists: "+input.FunctionName))
		return
	}
	f.mu.Lock()
	f.Description = input.Description
	f.mu.Unlock()
	protocol.WriteRestJSON(rw, http.StatusCreated, configuration(f))
}

func (s *Server) getFunction(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "FunctionName")
	f, ok := s.registry.GetFunction(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("function not found: "+name))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		Configuration types.FunctionConfiguration
	}{Configuration: configuration(f)})
}

func (s *Server) listFunctions(rw http.ResponseWriter, req *http.Request) {
	functions := s.registry.ListFunctions()
	out := make([]types.FunctionConfiguration, 0, len(functions))
	for _, f := range functions {
		out = append(out, configuration(f))
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		Functions []types.FunctionConfiguration
	}{Functions: out})
}

func (s *Server) deleteFunction(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "FunctionName")
	if !s.registry.DeleteFunction(name) {
		protocol.WriteRestError(rw, ErrorNotFound("function not found: "+name))
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

type updateFunctionCodeRequest struct {
	ZipFile []byte
}

func (s *Server) updateFunctionCode(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "FunctionName")
	f, ok := s.registry.GetFunction(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("function not found: "+name))
		return
	}
	input, rerr := protocol.DecodeRestJSON[updateFunctionCodeRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	f.UpdateCode(s.clock.Now(), input.ZipFile)
	protocol.WriteRestJSON(rw, http.StatusOK, configuration(f))
}

type updateFunctionConfigurationRequest struct {
	Description string
	Timeout     int32
	MemorySize  int32
	Environment struct {
		Variables map[string]string
	}
}

func (s *Server) updateFunctionConfiguration(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "FunctionName")
	f, ok := s.registry.GetFunction(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("function not found: "+name))
		return
	}
	input, rerr := protocol.DecodeRestJSON[updateFunctionConfigurationRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	f.UpdateConfiguration(s.clock.Now(), input.Description, input.Timeout, input.MemorySize, input.Environment.Variables)
	protocol.WriteRestJSON(rw, http.StatusOK, configuration(f))
}

// invoke never runs the function's code: it echoes the request payload
// back as the response payload, matching a synchronous RequestResponse
// invocation's shape without a real execution sandbox.
func (s *Server) invoke(rw http.ResponseWriter, req *http.Request) {
	name := protocol.PathParam(req, "FunctionName")
	f, ok := s.registry.GetFunction(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("function not found: "+name))
		return
	}
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	_ = f
	rw.Header().Set("X-Amz-Executed-Version", "$LATEST")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write(body)
}
