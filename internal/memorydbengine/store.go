// Package memorydbengine implements the MemoryDB thin store. MemoryDB has
// no distinct AWS SDK v2 service package in the pack; its cluster/shard
// vocabulary is modelled on ElastiCache's Redis-cluster shape, the
// closest analogue, per the wire field names MemoryDB's own API uses
// (PascalCase JSON, same family as ElastiCache's Query-era XML fields).
package memorydbengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	ecachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
)

type Endpoint struct {
	Address string
	Port    int32
}

type Node struct {
	Name     string
	Status   string
	Endpoint *Endpoint
}

type Shard struct {
	Name           string
	Status         string
	NumberOfNodes  int32
	Nodes          []Node
}

type Cluster struct {
	mu sync.Mutex

	Name                string
	ARN                 string
	Status              string
	Description         string
	NodeType            string
	Engine              string
	EngineVersion       string
	ACLName             string
	SubnetGroupName     string
	TLSEnabled          bool
	NumberOfShards      int32
	NumReplicasPerShard int32
	Shards              []Shard
	ClusterEndpoint     *Endpoint
	Created             time.Time
	Tags                map[string]string
}

type SubnetGroup struct {
	Name        string
	ARN         string
	Description string
	VpcID       string
}

type User struct {
	Name         string
	ARN          string
	Status       string
	AccessString string
}

type ACL struct {
	Name      string
	ARN       string
	Status    string
	UserNames []string
}

type Snapshot struct {
	Name    string
	ARN     string
	Status  string
	Source  string
	Cluster string
}

// Registry is the process-wide MemoryDB store.
type Registry struct {
	mu           sync.RWMutex
	region       string
	account      string
	clusters     map[string]*Cluster
	subnetGroups map[string]*SubnetGroup
	users        map[string]*User
	acls         map[string]*ACL
	snapshots    map[string]*Snapshot
	resourceTags map[string]map[string]string
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:       region,
		account:      account,
		clusters:     make(map[string]*Cluster),
		subnetGroups: make(map[string]*SubnetGroup),
		users:        make(map[string]*User),
		acls:         make(map[string]*ACL),
		snapshots:    make(map[string]*Snapshot),
		resourceTags: make(map[string]map[string]string),
	}
}

func (r *Registry) TagResource(resourceARN string, tags map[string]string) []ecachetypes.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.resourceTags[resourceARN]
	if !ok {
		existing = make(map[string]string)
		r.resourceTags[resourceARN] = existing
	}
	for k, v := range tags {
		existing[k] = v
	}
	return tagVocabulary(existing)
}

func (r *Registry) UntagResource(resourceARN string, keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.resourceTags[resourceARN]
	if !ok {
		return
	}
	for _, k := range keys {
		delete(existing, k)
	}
}

func (r *Registry) ListTags(resourceARN string) []ecachetypes.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tagVocabulary(r.resourceTags[resourceARN])
}

func (r *Registry) arn(resource, name string) string {
	return fmt.Sprintf("arn:aws:memorydb:%s:%s:%s/%s", r.region, r.account, resource, name)
}

func (r *Registry) CreateCluster(now time.Time, name, nodeType, aclName, description, subnetGroupName, engine, engineVersion string, numShards int32, tlsEnabled bool, tags map[string]string) (*Cluster, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clusters[name]; ok {
		return nil, false
	}
	if numShards <= 0 {
		numShards = 1
	}
	if engine == "" {
		engine = "redis"
	}
	shards := make([]Shard, numShards)
	for i := range shards {
		shards[i] = Shard{
			Name:          fmt.Sprintf("%s-%03d", name, i+1),
			Status:        "available",
			NumberOfNodes: 1,
			Nodes: []Node{{
				Name:   fmt.Sprintf("%s-%03d-001", name, i+1),
				Status: "available",
				Endpoint: &Endpoint{
					Address: fmt.Sprintf("%s-%03d-001.%s.memorydb.%s.amazonaws.com", name, i+1, name, r.region),
					Port:    6379,
				},
			}},
		}
	}
	c := &Cluster{
		Name:            name,
		ARN:             r.arn("cluster", name),
		Status:          "available",
		Description:     description,
		NodeType:        nodeType,
		Engine:          engine,
		EngineVersion:   engineVersion,
		ACLName:         aclName,
		SubnetGroupName: subnetGroupName,
		TLSEnabled:      tlsEnabled,
		NumberOfShards:  numShards,
		Shards:          shards,
		ClusterEndpoint: &Endpoint{Address: fmt.Sprintf("clustercfg.%s.memorydb.%s.amazonaws.com", name, r.region), Port: 6379},
		Created:         now,
		Tags:            tags,
	}
	if c.Tags == nil {
		c.Tags = make(map[string]string)
	}
	r.clusters[name] = c
	return c, true
}

func (r *Registry) GetCluster(name string) (*Cluster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clusters[name]
	return c, ok
}

func (r *Registry) ListClusters() []*Cluster {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Cluster, 0, len(r.clusters))
	for _, c := range r.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) DeleteCluster(name string) (*Cluster, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clusters[name]
	if !ok {
		return nil, false
	}
	delete(r.clusters, name)
	c.Status = "deleting"
	return c, true
}

func (c *Cluster) Update(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if description != "" {
		c.Description = description
	}
}

func (r *Registry) CreateSubnetGroup(name, description, vpcID string) (*SubnetGroup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subnetGroups[name]; ok {
		return nil, false
	}
	g := &SubnetGroup{Name: name, ARN: r.arn("subnetgroup", name), Description: description, VpcID: vpcID}
	r.subnetGroups[name] = g
	return g, true
}

func (r *Registry) GetSubnetGroup(name string) (*SubnetGroup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.subnetGroups[name]
	return g, ok
}

func (r *Registry) ListSubnetGroups() []*SubnetGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SubnetGroup, 0, len(r.subnetGroups))
	for _, g := range r.subnetGroups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) DeleteSubnetGroup(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subnetGroups[name]; !ok {
		return false
	}
	delete(r.subnetGroups, name)
	return true
}

func (r *Registry) CreateUser(name, accessString string) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[name]; ok {
		return nil, false
	}
	u := &User{Name: name, ARN: r.arn("user", name), Status: "active", AccessString: accessString}
	r.users[name] = u
	return u, true
}

func (r *Registry) GetUser(name string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[name]
	return u, ok
}

func (r *Registry) ListUsers() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) UpdateUser(name, accessString string) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[name]
	if !ok {
		return nil, false
	}
	if accessString != "" {
		u.AccessString = accessString
	}
	return u, true
}

func (r *Registry) DeleteUser(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[name]; !ok {
		return false
	}
	delete(r.users, name)
	return true
}

func (r *Registry) CreateACL(name string, userNames []string) (*ACL, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.acls[name]; ok {
		return nil, false
	}
	a := &ACL{Name: name, ARN: r.arn("acl", name), Status: "active", UserNames: userNames}
	r.acls[name] = a
	return a, true
}

func (r *Registry) GetACL(name string) (*ACL, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.acls[name]
	return a, ok
}

func (r *Registry) ListACLs() []*ACL {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ACL, 0, len(r.acls))
	for _, a := range r.acls {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) UpdateACL(name string, userNamesToAdd, userNamesToRemove []string) (*ACL, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.acls[name]
	if !ok {
		return nil, false
	}
	remove := make(map[string]bool, len(userNamesToRemove))
	for _, n := range userNamesToRemove {
		remove[n] = true
	}
	kept := make([]string, 0, len(a.UserNames))
	for _, n := range a.UserNames {
		if !remove[n] {
			kept = append(kept, n)
		}
	}
	a.UserNames = append(kept, userNamesToAdd...)
	return a, true
}

func (r *Registry) DeleteACL(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.acls[name]; !ok {
		return false
	}
	delete(r.acls, name)
	return true
}

func (r *Registry) CreateSnapshot(name, clusterName string) (*Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[name]; ok {
		return nil, false
	}
	s := &Snapshot{Name: name, ARN: r.arn("snapshot", name), Status: "available", Cluster: clusterName}
	r.snapshots[name] = s
	return s, true
}

func (r *Registry) ListSnapshots() []*Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Snapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) DeleteSnapshot(name string) (*Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[name]
	if !ok {
		return nil, false
	}
	delete(r.snapshots, name)
	return s, true
}

// tagVocabulary exercises elasticache's Tag type per the grounding note
// above instead of hand-rolling an equivalent struct.
func tagVocabulary(tags map[string]string) []ecachetypes.Tag {
	out := make([]ecachetypes.Tag, 0, len(tags))
	for k, v := range tags {
		key, val := k, v
		out = append(out, ecachetypes.Tag{Key: &key, Value: &val})
	}
	return out
}
