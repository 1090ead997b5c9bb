// Package cloudwatchlogsengine implements the CloudWatch Logs thin store:
// log groups containing log streams, each an ordered list of log events.
// FilterLogEvents matches its filter pattern as a plain substring of the
// message, not real CloudWatch filter syntax (spec.md §4.4).
package cloudwatchlogsengine

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

type LogEvent struct {
	Timestamp int64
	Message   string
	IngestionTime int64
}

type LogStream struct {
	Name    string
	Created time.Time
	events  []LogEvent
}

type SubscriptionFilter struct {
	Name           string
	FilterPattern  string
	DestinationARN string
}

type LogGroup struct {
	mu                  sync.Mutex
	Name                string
	Created             time.Time
	RetentionInDays     *int32
	Tags                map[string]string
	streams             map[string]*LogStream
	SubscriptionFilters map[string]SubscriptionFilter
}

func newLogGroup(now time.Time, name string) *LogGroup {
	return &LogGroup{
		Name:                name,
		Created:             now,
		Tags:                make(map[string]string),
		streams:             make(map[string]*LogStream),
		SubscriptionFilters: make(map[string]SubscriptionFilter),
	}
}

// Registry is the process-wide CloudWatch Logs store.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*LogGroup
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*LogGroup)}
}

func (r *Registry) CreateLogGroup(now time.Time, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[name]; ok {
		return false
	}
	r.groups[name] = newLogGroup(now, name)
	return true
}

func (r *Registry) GetLogGroup(name string) (*LogGroup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[name]
	return g, ok
}

func (r *Registry) DeleteLogGroup(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[name]; !ok {
		return false
	}
	delete(r.groups, name)
	return true
}

func (r *Registry) DescribeLogGroups(prefix string) []*LogGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*LogGroup
	for _, g := range r.groups {
		if prefix == "" || strings.HasPrefix(g.Name, prefix) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (g *LogGroup) CreateLogStream(now time.Time, name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.streams[name]; ok {
		return false
	}
	g.streams[name] = &LogStream{Name: name, Created: now}
	return true
}

func (g *LogGroup) DeleteLogStream(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.streams[name]; !ok {
		return false
	}
	delete(g.streams, name)
	return true
}

func (g *LogGroup) GetLogStream(name string) (*LogStream, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.streams[name]
	return s, ok
}

func (g *LogGroup) DescribeLogStreams(prefix string) []*LogStream {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*LogStream
	for _, s := range g.streams {
		if prefix == "" || strings.HasPrefix(s.Name, prefix) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (g *LogGroup) tagsSnapshot() map[string]string {
	out := make(map[string]string, len(g.Tags))
	for k, v := range g.Tags {
		out[k] = v
	}
	return out
}

func (s *LogStream) PutEvents(now time.Time, events []types.InputLogEvent) {
	for _, e := range events {
		ts := int64(0)
		if e.Timestamp != nil {
			ts = *e.Timestamp
		}
		s.events = append(s.events, LogEvent{
			Timestamp:     ts,
			Message:       derefString(e.Message),
			IngestionTime: now.UnixMilli(),
		})
	}
	sort.Slice(s.events, func(i, j int) bool { return s.events[i].Timestamp < s.events[j].Timestamp })
}

func (s *LogStream) Events() []LogEvent {
	return s.events
}

// FilterEvents matches pattern as a plain substring of each event's message.
func (s *LogStream) FilterEvents(pattern string) []LogEvent {
	if pattern == "" {
		return s.events
	}
	var out []LogEvent
	for _, e := range s.events {
		if strings.Contains(e.Message, pattern) {
			out = append(out, e)
		}
	}
	return out
}

func (g *LogGroup) PutSubscriptionFilter(f SubscriptionFilter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SubscriptionFilters[f.Name] = f
}

func (g *LogGroup) DeleteSubscriptionFilter(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.SubscriptionFilters, name)
}

func (g *LogGroup) subscriptionFiltersSnapshot() []SubscriptionFilter {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SubscriptionFilter, 0, len(g.SubscriptionFilters))
	for _, f := range g.SubscriptionFilters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
