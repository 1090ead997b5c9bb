// Package sfnengine implements the Step Functions thin store: state
// machines are CRUD entities distinct from their executions
// (original_source/src/stepfunctions/state.rs); executions start RUNNING
// and never evaluate, per spec.md §4.4.
package sfnengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sfn/types"

	"awslite/internal/uuid"
)

type StateMachine struct {
	Name       string
	ARN        string
	Definition string
	RoleARN    string
	Type       types.StateMachineType
	Created    time.Time
	Tags       map[string]string
}

type Execution struct {
	Name            string
	ARN             string
	StateMachineARN string
	Input           string
	Status          types.ExecutionStatus
	Started         time.Time
	Stopped         *time.Time
}

type Activity struct {
	Name    string
	ARN     string
	Created time.Time
}

// Registry is the process-wide Step Functions store.
type Registry struct {
	mu            sync.RWMutex
	region        string
	account       string
	stateMachines map[string]*StateMachine
	executions    map[string]*Execution
	activities    map[string]*Activity
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:        region,
		account:       account,
		stateMachines: make(map[string]*StateMachine),
		executions:    make(map[string]*Execution),
		activities:    make(map[string]*Activity),
	}
}

func (r *Registry) CreateStateMachine(now time.Time, name, definition, roleARN string, typ types.StateMachineType) (*StateMachine, bool) {
	arn := fmt.Sprintf("arn:aws:states:%s:%s:stateMachine:%s", r.region, r.account, name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stateMachines[arn]; ok {
		return nil, false
	}
	if typ == "" {
		typ = types.StateMachineTypeStandard
	}
	sm := &StateMachine{Name: name, ARN: arn, Definition: definition, RoleARN: roleARN, Type: typ, Created: now, Tags: make(map[string]string)}
	r.stateMachines[arn] = sm
	return sm, true
}

func (r *Registry) GetStateMachine(arn string) (*StateMachine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sm, ok := r.stateMachines[arn]
	return sm, ok
}

func (r *Registry) DeleteStateMachine(arn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stateMachines[arn]; !ok {
		return false
	}
	delete(r.stateMachines, arn)
	return true
}

func (r *Registry) UpdateStateMachine(arn, definition, roleARN string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.stateMachines[arn]
	if !ok {
		return false
	}
	if definition != "" {
		sm.Definition = definition
	}
	if roleARN != "" {
		sm.RoleARN = roleARN
	}
	return true
}

func (r *Registry) ListStateMachines() []*StateMachine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*StateMachine, 0, len(r.stateMachines))
	for _, sm := range r.stateMachines {
		out = append(out, sm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) StartExecution(now time.Time, stateMachineARN, name, input string) *Execution {
	if name == "" {
		name = uuid.V4().String()
	}
	arn := fmt.Sprintf("%s:%s", replaceStateMachineToExecution(stateMachineARN), name)
	exec := &Execution{
		Name:            name,
		ARN:             arn,
		StateMachineARN: stateMachineARN,
		Input:           input,
		Status:          types.ExecutionStatusRunning,
		Started:         now,
	}
	r.mu.Lock()
	r.executions[arn] = exec
	r.mu.Unlock()
	return exec
}

func replaceStateMachineToExecution(stateMachineARN string) string {
	// arn:aws:states:<region>:<account>:stateMachine:<name> ->
	// arn:aws:states:<region>:<account>:execution:<name>
	const marker = ":stateMachine:"
	idx := indexOf(stateMachineARN, marker)
	if idx < 0 {
		return stateMachineARN
	}
	return stateMachineARN[:idx] + ":execution:" + stateMachineARN[idx+len(marker):]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func (r *Registry) GetExecution(arn string) (*Execution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executions[arn]
	return e, ok
}

func (r *Registry) StopExecution(now time.Time, arn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[arn]
	if !ok {
		return false
	}
	e.Status = types.ExecutionStatusAborted
	e.Stopped = &now
	return true
}

func (r *Registry) ListExecutions(stateMachineARN string, statusFilter types.ExecutionStatus) []*Execution {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Execution
	for _, e := range r.executions {
		if e.StateMachineARN != stateMachineARN {
			continue
		}
		if statusFilter != "" && e.Status != statusFilter {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

func (r *Registry) CreateActivity(now time.Time, name string) (*Activity, bool) {
	arn := fmt.Sprintf("arn:aws:states:%s:%s:activity:%s", r.region, r.account, name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[arn]; ok {
		return nil, false
	}
	a := &Activity{Name: name, ARN: arn, Created: now}
	r.activities[arn] = a
	return a, true
}

func (r *Registry) DeleteActivity(arn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[arn]; !ok {
		return false
	}
	delete(r.activities, arn)
	return true
}

func (r *Registry) ListActivities() []*Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (sm *StateMachine) tagsSnapshot() map[string]string {
	out := make(map[string]string, len(sm.Tags))
	for k, v := range sm.Tags {
		out[k] = v
	}
	return out
}
