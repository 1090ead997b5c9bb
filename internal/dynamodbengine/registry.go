package dynamodbengine

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"awslite/internal/protocol"
)

// Registry is the process-wide DynamoDB table store, keyed by table name.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// CreateTable creates a table, or returns ResourceInUse if the name is taken.
func (r *Registry) CreateTable(now time.Time, name string, keySchema []types.KeySchemaElement, attrs []types.AttributeDefinition, billingMode types.BillingMode, throughput *types.ProvisionedThroughput, tags map[string]string) (*Table, *protocol.JSONError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[name]; ok {
		return nil, ErrorResourceInUse()
	}
	table := newTable(now, name, keySchema, attrs, billingMode, throughput)
	for k, v := range tags {
		table.Tags[k] = v
	}
	r.tables[name] = table
	return table, nil
}

// GetTable looks up a table by name.
func (r *Registry) GetTable(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// DeleteTable removes a table by name.
func (r *Registry) DeleteTable(name string) (*Table, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[name]
	if ok {
		delete(r.tables, name)
	}
	return t, ok
}

// ListTables returns table names in sorted order, paginated after
// exclusiveStart, bounded at limit (0 means unbounded).
func (r *Registry) ListTables(exclusiveStart string, limit int) (names []string, lastEvaluated string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]string, 0, len(r.tables))
	for name := range r.tables {
		all = append(all, name)
	}
	sort.Strings(all)
	start := 0
	if exclusiveStart != "" {
		idx := sort.SearchStrings(all, exclusiveStart)
		if idx < len(all) && all[idx] == exclusiveStart {
			start = idx + 1
		} else {
			start = idx
		}
	}
	all = all[start:]
	if limit > 0 && len(all) > limit {
		return all[:limit], all[limit-1]
	}
	return all, ""
}

// EachTable iterates every table, for admin introspection.
func (r *Registry) EachTable(yield func(*Table) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tables {
		if !yield(t) {
			return
		}
	}
}

// applyUpdateExpression applies a minimal SET/REMOVE expression (per
// spec.md §4.4's "UpdateItem supports SET attr = :v and REMOVE attr" rule)
// to item in place.
func applyUpdateExpression(item map[string]types.AttributeValue, expr string, values map[string]types.AttributeValue) {
	expr = strings.TrimSpace(expr)
	upper := strings.ToUpper(expr)
	setIdx := strings.Index(upper, "SET ")
	removeIdx := strings.Index(upper, "REMOVE ")

	var setClause, removeClause string
	switch {
	case setIdx >= 0 && removeIdx > setIdx:
		setClause = expr[setIdx+4 : removeIdx]
		removeClause = expr[removeIdx+7:]
	case removeIdx >= 0 && setIdx > removeIdx:
		removeClause = expr[removeIdx+7 : setIdx]
		setClause = expr[setIdx+4:]
	case setIdx >= 0:
		setClause = expr[setIdx+4:]
	case removeIdx >= 0:
		removeClause = expr[removeIdx+7:]
	}

	for _, assignment := range strings.Split(setClause, ",") {
		assignment = strings.TrimSpace(assignment)
		if assignment == "" {
			continue
		}
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			continue
		}
		attr := strings.TrimSpace(parts[0])
		valueRef := strings.TrimSpace(parts[1])
		if v, ok := values[valueRef]; ok {
			item[attr] = v
		}
	}
	for _, attr := range strings.Split(removeClause, ",") {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		delete(item, attr)
	}
}
