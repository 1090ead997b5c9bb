// Package eventbridgeengine implements the EventBridge thin store: named
// event buses holding rules, each rule holding targets, plus a ring buffer
// of recently PutEvents entries kept for introspection (spec.md §4.4).
package eventbridgeengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

type Rule struct {
	Name         string
	ARN          string
	EventPattern string
	ScheduleExpr string
	State        types.RuleState
	Targets      map[string]types.Target
	Tags         map[string]string
}

type EventBus struct {
	Name  string
	ARN   string
	Rules map[string]*Rule
}

type PutEventEntry struct {
	Source     string
	DetailType string
	Detail     string
	Time       time.Time
}

// Registry is the process-wide EventBridge store.
type Registry struct {
	mu           sync.RWMutex
	region       string
	account      string
	buses        map[string]*EventBus
	recentEvents []PutEventEntry
}

const maxRecentEvents = 50

func NewRegistry(region, account string) *Registry {
	r := &Registry{region: region, account: account, buses: make(map[string]*EventBus)}
	r.buses["default"] = &EventBus{
		Name:  "default",
		ARN:   fmt.Sprintf("arn:aws:events:%s:%s:event-bus/default", region, account),
		Rules: make(map[string]*Rule),
	}
	return r
}

func (r *Registry) bus(name string) *EventBus {
	if name == "" {
		name = "default"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buses[name]
	if !ok {
		b = &EventBus{Name: name, ARN: fmt.Sprintf("arn:aws:events:%s:%s:event-bus/%s", r.region, r.account, name), Rules: make(map[string]*Rule)}
		r.buses[name] = b
	}
	return b
}

func (r *Registry) CreateEventBus(name string) (*EventBus, bool) {
	r.mu.Lock()
	if _, exists := r.buses[name]; exists {
		r.mu.Unlock()
		return nil, false
	}
	r.mu.Unlock()
	return r.bus(name), true
}

func (r *Registry) DeleteEventBus(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "default" {
		return false
	}
	if _, ok := r.buses[name]; !ok {
		return false
	}
	delete(r.buses, name)
	return true
}

func (r *Registry) PutRule(busName, name, eventPattern, schedule string) *Rule {
	b := r.bus(busName)
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := b.Rules[name]
	if !ok {
		rule = &Rule{
			Name:    name,
			ARN:     fmt.Sprintf("arn:aws:events:%s:%s:rule/%s", r.region, r.account, name),
			Targets: make(map[string]types.Target),
			Tags:    make(map[string]string),
			State:   types.RuleStateEnabled,
		}
		b.Rules[name] = rule
	}
	rule.EventPattern = eventPattern
	rule.ScheduleExpr = schedule
	return rule
}

func (r *Registry) GetRule(busName, name string) (*Rule, bool) {
	b := r.bus(busName)
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := b.Rules[name]
	return rule, ok
}

func (r *Registry) DeleteRule(busName, name string) bool {
	b := r.bus(busName)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := b.Rules[name]; !ok {
		return false
	}
	delete(b.Rules, name)
	return true
}

func (r *Registry) ListRules(busName string) []*Rule {
	b := r.bus(busName)
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(b.Rules))
	for name := range b.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Rule, 0, len(names))
	for _, name := range names {
		out = append(out, b.Rules[name])
	}
	return out
}

func (r *Registry) PutTargets(busName, ruleName string, targets []types.Target) (int, bool) {
	rule, ok := r.GetRule(busName, ruleName)
	if !ok {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, target := range targets {
		rule.Targets[*target.Id] = target
	}
	return 0, true
}

func (r *Registry) RemoveTargets(busName, ruleName string, ids []string) (int, bool) {
	rule, ok := r.GetRule(busName, ruleName)
	if !ok {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(rule.Targets, id)
	}
	return 0, true
}

func (r *Registry) ListTargets(busName, ruleName string) ([]types.Target, bool) {
	rule, ok := r.GetRule(busName, ruleName)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(rule.Targets))
	for id := range rule.Targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]types.Target, 0, len(ids))
	for _, id := range ids {
		out = append(out, rule.Targets[id])
	}
	return out, true
}

func (r *Registry) RecordPutEvents(entries []PutEventEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recentEvents = append(r.recentEvents, entries...)
	if len(r.recentEvents) > maxRecentEvents {
		r.recentEvents = r.recentEvents[len(r.recentEvents)-maxRecentEvents:]
	}
}

func (r *Registry) EachBus(yield func(*EventBus) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.buses {
		if !yield(b) {
			return
		}
	}
}
