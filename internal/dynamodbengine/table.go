package dynamodbengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"awslite/internal/uuid"
)

// Table is a single DynamoDB table: a hash (and optional range) keyed item
// store, per spec.md §4.4's "item key must match declared schema" rule,
// enriched with the TableStatus/TableId/BillingMode bookkeeping
// original_source/src/dynamodb carries that spec.md's distillation elides
// (SPEC_FULL.md §4).
type Table struct {
	mu sync.RWMutex

	Name                 string
	TableID              string
	Status               types.TableStatus
	Created              time.Time
	HashKey              string
	HashKeyType          types.ScalarAttributeType
	RangeKey             string
	RangeKeyType         types.ScalarAttributeType
	BillingMode          types.BillingMode
	ProvisionedThroughput *types.ProvisionedThroughputDescription
	Tags                 map[string]string

	items map[string]map[string]types.AttributeValue
}

func newTable(now time.Time, name string, keySchema []types.KeySchemaElement, attrs []types.AttributeDefinition, billingMode types.BillingMode, throughput *types.ProvisionedThroughput) *Table {
	t := &Table{
		Name:        name,
		TableID:     uuid.V4().String(),
		Status:      types.TableStatusActive,
		Created:     now,
		BillingMode: billingMode,
		Tags:        make(map[string]string),
		items:       make(map[string]map[string]types.AttributeValue),
	}
	typeOf := func(attrName string) types.ScalarAttributeType {
		for _, a := range attrs {
			if a.AttributeName != nil && *a.AttributeName == attrName {
				return a.AttributeType
			}
		}
		return types.ScalarAttributeTypeS
	}
	for _, k := range keySchema {
		name := safeDeref(k.AttributeName)
		if k.KeyType == types.KeyTypeHash {
			t.HashKey = name
			t.HashKeyType = typeOf(name)
		} else {
			t.RangeKey = name
			t.RangeKeyType = typeOf(name)
		}
	}
	if throughput != nil {
		t.ProvisionedThroughput = &types.ProvisionedThroughputDescription{
			ReadCapacityUnits:  throughput.ReadCapacityUnits,
			WriteCapacityUnits: throughput.WriteCapacityUnits,
		}
	}
	return t
}

func safeDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func attributeValueString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return string(v.Value)
	default:
		return ""
	}
}

// itemKey builds the composite key string used as this table's internal
// map key, from the item's hash (and range, if any) attribute values.
func (t *Table) itemKey(item map[string]types.AttributeValue) (string, bool) {
	hash, ok := item[t.HashKey]
	if !ok {
		return "", false
	}
	if t.RangeKey == "" {
		return attributeValueString(hash), true
	}
	rangeVal, ok := item[t.RangeKey]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s\x00%s", attributeValueString(hash), attributeValueString(rangeVal)), true
}

// PutItem stores item under its key, replacing any prior value.
func (t *Table) PutItem(item map[string]types.AttributeValue) (map[string]types.AttributeValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key, ok := t.itemKey(item)
	if !ok {
		return nil, false
	}
	previous := t.items[key]
	t.items[key] = item
	return previous, true
}

// GetItem returns the stored item for the given key attributes, if any.
func (t *Table) GetItem(keyAttrs map[string]types.AttributeValue) (map[string]types.AttributeValue, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, ok := t.itemKey(keyAttrs)
	if !ok {
		return nil, false
	}
	item, ok := t.items[key]
	return item, ok
}

// DeleteItem removes the item for the given key attributes, returning the
// prior value if one existed.
func (t *Table) DeleteItem(keyAttrs map[string]types.AttributeValue) map[string]types.AttributeValue {
	t.mu.Lock()
	defer t.mu.Unlock()
	key, ok := t.itemKey(keyAttrs)
	if !ok {
		return nil
	}
	previous := t.items[key]
	delete(t.items, key)
	return previous
}

// Scan walks the full table in an arbitrary but stable (key-sorted) order.
func (t *Table) Scan() []map[string]types.AttributeValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.items[k])
	}
	return out
}

// Query restricts to items whose hash key attribute equals hashValue.
func (t *Table) Query(hashValue types.AttributeValue) []map[string]types.AttributeValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	want := attributeValueString(hashValue)
	var out []map[string]types.AttributeValue
	var keys []string
	for k, item := range t.items {
		if attributeValueString(item[t.HashKey]) == want {
			keys = append(keys, k)
			_ = item
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, t.items[k])
	}
	return out
}

// ItemCount returns the number of stored items, for admin introspection.
func (t *Table) ItemCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

func (t *Table) tagsSnapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.Tags))
	for k, v := range t.Tags {
		out[k] = v
	}
	return out
}

func (t *Table) tag(tags map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range tags {
		t.Tags[k] = v
	}
}

func (t *Table) untag(keys []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range keys {
		delete(t.Tags, k)
	}
}
