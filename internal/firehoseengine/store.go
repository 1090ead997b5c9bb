// Package firehoseengine implements the Kinesis Data Firehose thin store:
// a named delivery stream that accepts records and keeps them in an
// in-memory buffer standing in for the real S3/Redshift/OpenSearch
// destination (spec.md §4.4's "keyed map + tag set" shape).
package firehoseengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
)

// DeliveryStream is a single Firehose delivery stream.
type DeliveryStream struct {
	mu      sync.Mutex
	Name    string
	ARN     string
	Status  types.DeliveryStreamStatus
	Created time.Time
	Records [][]byte
	Tags    map[string]string
}

func newDeliveryStream(now time.Time, region, account, name string) *DeliveryStream {
	return &DeliveryStream{
		Name:    name,
		ARN:     fmt.Sprintf("arn:aws:firehose:%s:%s:deliverystream/%s", region, account, name),
		Status:  types.DeliveryStreamStatusActive,
		Created: now,
		Tags:    make(map[string]string),
	}
}

func (d *DeliveryStream) putRecord(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Records = append(d.Records, data)
}

func (d *DeliveryStream) recordCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Records)
}

func (d *DeliveryStream) tagsSnapshot() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.Tags))
	for k, v := range d.Tags {
		out[k] = v
	}
	return out
}

// Registry is the process-wide Firehose delivery-stream store.
type Registry struct {
	mu      sync.RWMutex
	region  string
	account string
	streams map[string]*DeliveryStream
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, streams: make(map[string]*DeliveryStream)}
}

func (r *Registry) CreateDeliveryStream(now time.Time, name string) (*DeliveryStream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; ok {
		return nil, false
	}
	s := newDeliveryStream(now, r.region, r.account, name)
	r.streams[name] = s
	return s, true
}

func (r *Registry) GetDeliveryStream(name string) (*DeliveryStream, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.streams[name]
	return s, ok
}

func (r *Registry) DeleteDeliveryStream(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; !ok {
		return false
	}
	delete(r.streams, name)
	return true
}

func (r *Registry) ListDeliveryStreams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) EachDeliveryStream(yield func(*DeliveryStream) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.streams {
		if !yield(s) {
			return
		}
	}
}
