package apigatewayengine

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

func NewServer(clock clockwork.Clock, region, account string) *Server {
	s := &Server{clock: clock, region: region, registry: NewRegistry(region, account)}
	s.router = protocol.NewRestRouter()
	s.registerRoutes()
	return s
}

type Server struct {
	clock    clockwork.Clock
	region   string
	registry *Registry
	router   *protocol.RestRouter
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.router.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.router.Handle(http.MethodPost, "/restapis", s.createRestAPI)
	s.router.Handle(http.MethodGet, "/restapis", s.listRestAPIs)
	s.router.Handle(http.MethodGet, "/restapis/{restapi_id}", s.getRestAPI)
	s.router.Handle(http.MethodDelete, "/restapis/{restapi_id}", s.deleteRestAPI)
	s.router.Handle(http.MethodGet, "/restapis/{restapi_id}/resources", s.listResources)
	s.router.Handle(http.MethodPost, "/restapis/{restapi_id}/resources/{parent_id}", s.createResource)
	s.router.Handle(http.MethodPut, "/restapis/{restapi_id}/resources/{resource_id}/methods/{http_method}", s.putMethod)
	s.router.Handle(http.MethodPut, "/restapis/{restapi_id}/resources/{resource_id}/methods/{http_method}/integration", s.putIntegration)
	s.router.Handle(http.MethodPost, "/restapis/{restapi_id}/deployments", s.createDeployment)
	s.router.Handle(http.MethodGet, "/restapis/{restapi_id}/stages", s.listStages)
	s.router.Handle(http.MethodGet, "/restapis/{restapi_id}/stages/{stage_name}", s.getStage)
}

func restAPI(a *RestAPI) types.RestApi {
	return types.RestApi{
		Id:          aws.String(a.ID),
		Name:        aws.String(a.Name),
		Description: aws.String(a.Description),
		CreatedDate: aws.Time(a.Created),
	}
}

func resource(r *Resource) types.Resource {
	methods := make(map[string]types.Method, len(r.Methods))
	for verb, m := range r.Methods {
		methods[verb] = types.Method{
			HttpMethod:        aws.String(m.HTTPMethod),
			AuthorizationType: aws.String(m.AuthorizationType),
		}
	}
	return types.Resource{
		Id:              aws.String(r.ID),
		ParentId:        aws.String(r.ParentID),
		Path:            aws.String(r.Path),
		ResourceMethods: methods,
	}
}

func (s *Server) api(rw http.ResponseWriter, req *http.Request) (*RestAPI, bool) {
	id := protocol.PathParam(req, "restapi_id")
	a, ok := s.registry.GetRestAPI(id)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("no REST API found for id: "+id))
		return nil, false
	}
	return a, true
}

type createRestAPIRequest struct {
	Name        string
	Description string
}

func (s *Server) createRestAPI(rw http.ResponseWriter, req *http.Request) {
	input, rerr := protocol.DecodeRestJSON[createRestAPIRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	a := s.registry.CreateRestAPI(s.clock.Now(), input.Name, input.Description)
	protocol.WriteRestJSON(rw, http.StatusCreated, restAPI(a))
}

func (s *Server) getRestAPI(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	protocol.WriteRestJSON(rw, http.StatusOK, restAPI(a))
}

func (s *Server) listRestAPIs(rw http.ResponseWriter, req *http.Request) {
	apis := s.registry.ListRestAPIs()
	out := make([]types.RestApi, 0, len(apis))
	for _, a := range apis {
		out = append(out, restAPI(a))
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		Items []types.RestApi
	}{Items: out})
}

func (s *Server) deleteRestAPI(rw http.ResponseWriter, req *http.Request) {
	id := protocol.PathParam(req, "restapi_id")
	if !s.registry.DeleteRestAPI(id) {
		protocol.WriteRestError(rw, ErrorNotFound("no REST API found for id: "+id))
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) listResources(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	resources := a.ListResources()
	out := make([]types.Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, resource(r))
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		Items []types.Resource
	}{Items: out})
}

type createResourceRequest struct {
	PathPart string
}

func (s *Server) createResource(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	input, rerr := protocol.DecodeRestJSON[createResourceRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	parentID := protocol.PathParam(req, "parent_id")
	r, ok := a.CreateResource(parentID, input.PathPart)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("no resource found for id: "+parentID))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusCreated, resource(r))
}

type putMethodRequest struct {
	AuthorizationType string
}

func (s *Server) putMethod(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	input, rerr := protocol.DecodeRestJSON[putMethodRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	resourceID := protocol.PathParam(req, "resource_id")
	httpMethod := protocol.PathParam(req, "http_method")
	m, ok := a.PutMethod(resourceID, httpMethod, input.AuthorizationType)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("no resource found for id: "+resourceID))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusCreated, types.Method{
		HttpMethod:        aws.String(m.HTTPMethod),
		AuthorizationType: aws.String(m.AuthorizationType),
	})
}

type putIntegrationRequest struct {
	Type string
	Uri  string
}

func (s *Server) putIntegration(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	input, rerr := protocol.DecodeRestJSON[putIntegrationRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	resourceID := protocol.PathParam(req, "resource_id")
	httpMethod := protocol.PathParam(req, "http_method")
	m, ok := a.PutIntegration(resourceID, httpMethod, input.Type, input.Uri)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("no method found for "+httpMethod+" on resource "+resourceID))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusCreated, types.Integration{
		Type: types.IntegrationType(m.IntegrationType),
		Uri:  aws.String(m.IntegrationURI),
	})
}

type createDeploymentRequest struct {
	Description string
	StageName   string
}

func (s *Server) createDeployment(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	input, rerr := protocol.DecodeRestJSON[createDeploymentRequest](req)
	if rerr != nil {
		protocol.WriteRestError(rw, rerr)
		return
	}
	d := a.CreateDeployment(s.clock.Now(), input.Description, input.StageName)
	protocol.WriteRestJSON(rw, http.StatusCreated, types.Deployment{
		Id:          aws.String(d.ID),
		Description: aws.String(d.Description),
		CreatedDate: aws.Time(d.Created),
	})
}

func (s *Server) getStage(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	name := protocol.PathParam(req, "stage_name")
	st, ok := a.GetStage(name)
	if !ok {
		protocol.WriteRestError(rw, ErrorNotFound("no stage found for name: "+name))
		return
	}
	protocol.WriteRestJSON(rw, http.StatusOK, types.Stage{
		StageName:    aws.String(st.Name),
		DeploymentId: aws.String(st.DeploymentID),
		Variables:    st.Variables,
	})
}

func (s *Server) listStages(rw http.ResponseWriter, req *http.Request) {
	a, ok := s.api(rw, req)
	if !ok {
		return
	}
	stages := a.ListStages()
	out := make([]types.Stage, 0, len(stages))
	for _, st := range stages {
		out = append(out, types.Stage{StageName: aws.String(st.Name), DeploymentId: aws.String(st.DeploymentID), Variables: st.Variables})
	}
	protocol.WriteRestJSON(rw, http.StatusOK, struct {
		Item []types.Stage
	}{Item: out})
}
