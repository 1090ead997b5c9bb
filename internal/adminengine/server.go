// Package adminengine implements the debug-only introspection surface
// generalized from the teacher's internal/sqslite/server_admin.go: a
// single HTTP surface reporting live registry state across every
// service, bound to its own port and kept off the AWS wire surface.
package adminengine

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/julienschmidt/httprouter"
)

// Source is a service's admin-visible registry. Entities returns a JSON-able
// snapshot of whatever that service considers its top-level resources
// (queues, buckets, tables, streams, and so on).
type Source struct {
	Name     string
	Entities func() []any
}

// Collect converts a typed slice into the []any shape Source.Entities
// expects, so each engine can hand its own concrete registry types to the
// admin server without the admin package needing to know them.
func Collect[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Server aggregates admin Sources from every running service behind a
// single httprouter surface, matching the teacher's admin route style.
type Server struct {
	router  *httprouter.Router
	sources map[string]Source
	order   []string
}

func NewServer(sources ...Source) *Server {
	s := &Server{
		router:  httprouter.New(),
		sources: make(map[string]Source, len(sources)),
	}
	for _, src := range sources {
		s.sources[src.Name] = src
		s.order = append(s.order, src.Name)
	}
	sort.Strings(s.order)
	s.router.GET("/admin/services", s.listServices)
	s.router.GET("/admin/service/:name/entities", s.serviceEntities)
	return s
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(rw, req)
}

type serviceSummary struct {
	Name        string `json:"name"`
	EntityCount int    `json:"entity_count"`
}

func (s *Server) listServices(rw http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	summaries := make([]serviceSummary, 0, len(s.order))
	for _, name := range s.order {
		summaries = append(summaries, serviceSummary{
			Name:        name,
			EntityCount: len(s.sources[name].Entities()),
		})
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(summaries)
}

func (s *Server) serviceEntities(rw http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	src, ok := s.sources[name]
	if !ok {
		http.Error(rw, "unknown service: "+name, http.StatusNotFound)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(src.Entities())
}
