// Package apigatewayengine implements a thin REST API Gateway store:
// REST API, resource tree, method, and deployment/stage CRUD. Method
// execution (actually invoking an integration) is out of scope; this
// models the management-plane resources API Gateway itself exposes.
package apigatewayengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"awslite/internal/uuid"
)

type Method struct {
	HTTPMethod        string
	AuthorizationType string
	IntegrationURI    string
	IntegrationType   string
}

type Resource struct {
	ID       string
	ParentID string
	Path     string
	Methods  map[string]*Method
}

type Deployment struct {
	ID          string
	Description string
	Created     time.Time
}

type Stage struct {
	Name         string
	DeploymentID string
	Description  string
	Variables    map[string]string
}

type RestAPI struct {
	mu sync.Mutex

	ID          string
	Name        string
	Description string
	Created     time.Time
	resources   map[string]*Resource
	deployments map[string]*Deployment
	stages      map[string]*Stage
}

func (a *RestAPI) rootResourceID() string {
	for id, r := range a.resources {
		if r.Path == "/" {
			return id
		}
	}
	return ""
}

// Registry is the process-wide API Gateway store.
type Registry struct {
	mu      sync.RWMutex
	region  string
	account string
	apis    map[string]*RestAPI
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, apis: make(map[string]*RestAPI)}
}

func (r *Registry) CreateRestAPI(now time.Time, name, description string) *RestAPI {
	id := uuid.V4().String()[:10]
	rootID := uuid.V4().String()[:10]
	api := &RestAPI{
		ID:          id,
		Name:        name,
		Description: description,
		Created:     now,
		resources:   map[string]*Resource{rootID: {ID: rootID, Path: "/", Methods: make(map[string]*Method)}},
		deployments: make(map[string]*Deployment),
		stages:      make(map[string]*Stage),
	}
	r.mu.Lock()
	r.apis[id] = api
	r.mu.Unlock()
	return api
}

func (r *Registry) GetRestAPI(id string) (*RestAPI, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apis[id]
	return a, ok
}

func (r *Registry) ListRestAPIs() []*RestAPI {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RestAPI, 0, len(r.apis))
	for _, a := range r.apis {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) DeleteRestAPI(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apis[id]; !ok {
		return false
	}
	delete(r.apis, id)
	return true
}

func (a *RestAPI) CreateResource(parentID, pathPart string) (*Resource, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	parent, ok := a.resources[parentID]
	if !ok {
		return nil, false
	}
	id := uuid.V4().String()[:10]
	path := parent.Path
	if path == "/" {
		path = "/" + pathPart
	} else {
		path = path + "/" + pathPart
	}
	res := &Resource{ID: id, ParentID: parentID, Path: path, Methods: make(map[string]*Method)}
	a.resources[id] = res
	return res, true
}

func (a *RestAPI) GetResource(id string) (*Resource, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.resources[id]
	return r, ok
}

func (a *RestAPI) ListResources() []*Resource {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Resource, 0, len(a.resources))
	for _, r := range a.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (a *RestAPI) PutMethod(resourceID, httpMethod, authorizationType string) (*Method, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, ok := a.resources[resourceID]
	if !ok {
		return nil, false
	}
	m := &Method{HTTPMethod: httpMethod, AuthorizationType: authorizationType}
	res.Methods[httpMethod] = m
	return m, true
}

func (a *RestAPI) PutIntegration(resourceID, httpMethod, integrationType, uri string) (*Method, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, ok := a.resources[resourceID]
	if !ok {
		return nil, false
	}
	m, ok := res.Methods[httpMethod]
	if !ok {
		return nil, false
	}
	m.IntegrationType = integrationType
	m.IntegrationURI = uri
	return m, true
}

func (a *RestAPI) CreateDeployment(now time.Time, description, stageName string) *Deployment {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := &Deployment{ID: uuid.V4().String()[:10], Description: description, Created: now}
	a.deployments[d.ID] = d
	if stageName != "" {
		a.stages[stageName] = &Stage{Name: stageName, DeploymentID: d.ID, Variables: make(map[string]string)}
	}
	return d
}

func (a *RestAPI) GetStage(name string) (*Stage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stages[name]
	return s, ok
}

func (a *RestAPI) ListStages() []*Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Stage, 0, len(a.stages))
	for _, s := range a.stages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (a *RestAPI) InvokeURL(region, stageName string) string {
	return fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s", a.ID, region, stageName)
}
