package memorydbengine

import (
	"net/http"

	ecachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/jonboulle/clockwork"

	"awslite/internal/protocol"
)

const (
	ServicePrefix = "AmazonMemoryDB"
	ContentType   = "application/x-amz-json-1.1"
)

func NewServer(clock clockwork.Clock, region, account string) *Server {
	s := &Server{clock: clock, registry: NewRegistry(region, account)}
	s.dispatcher = protocol.NewJSONDispatcher(ServicePrefix, ContentType)
	s.registerRoutes()
	return s
}

type Server struct {
	clock      clockwork.Clock
	registry   *Registry
	dispatcher *protocol.JSONDispatcher
}

var _ http.Handler = (*Server)(nil)

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) { s.dispatcher.ServeHTTP(rw, req) }
func (s *Server) Registry() *Registry                                 { return s.registry }

func (s *Server) registerRoutes() {
	s.dispatcher.Handle("CreateCluster", s.createCluster)
	s.dispatcher.Handle("DeleteCluster", s.deleteCluster)
	s.dispatcher.Handle("DescribeClusters", s.describeClusters)
	s.dispatcher.Handle("UpdateCluster", s.updateCluster)
	s.dispatcher.Handle("CreateSubnetGroup", s.createSubnetGroup)
	s.dispatcher.Handle("DeleteSubnetGroup", s.deleteSubnetGroup)
	s.dispatcher.Handle("DescribeSubnetGroups", s.describeSubnetGroups)
	s.dispatcher.Handle("CreateUser", s.createUser)
	s.dispatcher.Handle("DeleteUser", s.deleteUser)
	s.dispatcher.Handle("DescribeUsers", s.describeUsers)
	s.dispatcher.Handle("UpdateUser", s.updateUser)
	s.dispatcher.Handle("CreateACL", s.createACL)
	s.dispatcher.Handle("DeleteACL", s.deleteACL)
	s.dispatcher.Handle("DescribeACLs", s.describeACLs)
	s.dispatcher.Handle("UpdateACL", s.updateACL)
	s.dispatcher.Handle("CreateSnapshot", s.createSnapshot)
	s.dispatcher.Handle("DeleteSnapshot", s.deleteSnapshot)
	s.dispatcher.Handle("DescribeSnapshots", s.describeSnapshots)
	s.dispatcher.Handle("TagResource", s.tagResource)
	s.dispatcher.Handle("UntagResource", s.untagResource)
	s.dispatcher.Handle("ListTags", s.listTags)
}

// Wire shapes are hand-rolled (MemoryDB has no aws-sdk-go-v2 service
// package of its own in the pack): Go's encoding/json matches exported
// field names case-insensitively, so plain PascalCase fields line up
// with the PascalCase wire format without needing tags.

type createClusterRequest struct {
	ClusterName         string
	NodeType            string
	ACLName             string
	Description         string
	SubnetGroupName     string
	Engine              string
	EngineVersion       string
	NumShards           int32
	TLSEnabled          bool
	Tags                []wireTag
}

type wireTag struct {
	Key   string
	Value string
}

type clusterResponse struct {
	Cluster *Cluster
}

func (s *Server) createCluster(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[createClusterRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	tags := make(map[string]string, len(input.Tags))
	for _, t := range input.Tags {
		tags[t.Key] = t.Value
	}
	c, ok := s.registry.CreateCluster(s.clock.Now(), input.ClusterName, input.NodeType, input.ACLName, input.Description, input.SubnetGroupName, input.Engine, input.EngineVersion, input.NumShards, input.TLSEnabled, tags)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("cluster already exists: "+input.ClusterName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, clusterResponse{Cluster: c})
}

type deleteClusterRequest struct {
	ClusterName string
}

func (s *Server) deleteCluster(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[deleteClusterRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	c, ok := s.registry.DeleteCluster(input.ClusterName)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("cluster not found: "+input.ClusterName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, clusterResponse{Cluster: c})
}

type describeClustersRequest struct {
	ClusterName string
}

func (s *Server) describeClusters(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[describeClustersRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if input.ClusterName != "" {
		c, ok := s.registry.GetCluster(input.ClusterName)
		if !ok {
			protocol.WriteJSONError(rw, ContentType, ErrorNotFound("cluster not found: "+input.ClusterName))
			return
		}
		protocol.WriteJSONResult(rw, ContentType, struct{ Clusters []*Cluster }{Clusters: []*Cluster{c}})
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ Clusters []*Cluster }{Clusters: s.registry.ListClusters()})
}

type updateClusterRequest struct {
	ClusterName string
	Description string
}

func (s *Server) updateCluster(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[updateClusterRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	c, ok := s.registry.GetCluster(input.ClusterName)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("cluster not found: "+input.ClusterName))
		return
	}
	c.Update(input.Description)
	protocol.WriteJSONResult(rw, ContentType, clusterResponse{Cluster: c})
}

type subnetGroupRequest struct {
	SubnetGroupName string
	Description     string
	VpcId           string
}

func (s *Server) createSubnetGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[subnetGroupRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	g, ok := s.registry.CreateSubnetGroup(input.SubnetGroupName, input.Description, input.VpcId)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("subnet group already exists: "+input.SubnetGroupName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ SubnetGroup *SubnetGroup }{SubnetGroup: g})
}

func (s *Server) deleteSubnetGroup(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[subnetGroupRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteSubnetGroup(input.SubnetGroupName) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("subnet group not found: "+input.SubnetGroupName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{}{})
}

func (s *Server) describeSubnetGroups(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, struct{ SubnetGroups []*SubnetGroup }{SubnetGroups: s.registry.ListSubnetGroups()})
}

type userRequest struct {
	UserName     string
	AccessString string
}

func (s *Server) createUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[userRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	u, ok := s.registry.CreateUser(input.UserName, input.AccessString)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("user already exists: "+input.UserName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ User *User }{User: u})
}

func (s *Server) deleteUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[userRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteUser(input.UserName) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found: "+input.UserName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{}{})
}

func (s *Server) describeUsers(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, struct{ Users []*User }{Users: s.registry.ListUsers()})
}

func (s *Server) updateUser(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[userRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	u, ok := s.registry.UpdateUser(input.UserName, input.AccessString)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("user not found: "+input.UserName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ User *User }{User: u})
}

type aclRequest struct {
	ACLName           string
	UserNames         []string
	UserNamesToAdd    []string
	UserNamesToRemove []string
}

func (s *Server) createACL(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[aclRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	a, ok := s.registry.CreateACL(input.ACLName, input.UserNames)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("acl already exists: "+input.ACLName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ ACL *ACL }{ACL: a})
}

func (s *Server) deleteACL(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[aclRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	if !s.registry.DeleteACL(input.ACLName) {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("acl not found: "+input.ACLName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{}{})
}

func (s *Server) describeACLs(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, struct{ ACLs []*ACL }{ACLs: s.registry.ListACLs()})
}

func (s *Server) updateACL(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[aclRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	a, ok := s.registry.UpdateACL(input.ACLName, input.UserNamesToAdd, input.UserNamesToRemove)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("acl not found: "+input.ACLName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ ACL *ACL }{ACL: a})
}

type snapshotRequest struct {
	SnapshotName string
	ClusterName  string
}

func (s *Server) createSnapshot(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[snapshotRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	snap, ok := s.registry.CreateSnapshot(input.SnapshotName, input.ClusterName)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorAlreadyExists("snapshot already exists: "+input.SnapshotName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ Snapshot *Snapshot }{Snapshot: snap})
}

func (s *Server) deleteSnapshot(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[snapshotRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	snap, ok := s.registry.DeleteSnapshot(input.SnapshotName)
	if !ok {
		protocol.WriteJSONError(rw, ContentType, ErrorNotFound("snapshot not found: "+input.SnapshotName))
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ Snapshot *Snapshot }{Snapshot: snap})
}

func (s *Server) describeSnapshots(rw http.ResponseWriter, req *http.Request) {
	protocol.WriteJSONResult(rw, ContentType, struct{ Snapshots []*Snapshot }{Snapshots: s.registry.ListSnapshots()})
}

type tagResourceRequest struct {
	ResourceArn string
	Tags        []wireTag
}

func (s *Server) tagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[tagResourceRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	tags := make(map[string]string, len(input.Tags))
	for _, t := range input.Tags {
		tags[t.Key] = t.Value
	}
	tagList := s.registry.TagResource(input.ResourceArn, tags)
	protocol.WriteJSONResult(rw, ContentType, struct{ TagList []ecachetypes.Tag }{TagList: tagList})
}

type untagResourceRequest struct {
	ResourceArn string
	TagKeys     []string
}

func (s *Server) untagResource(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[untagResourceRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	s.registry.UntagResource(input.ResourceArn, input.TagKeys)
	protocol.WriteJSONResult(rw, ContentType, struct{ TagList []ecachetypes.Tag }{TagList: s.registry.ListTags(input.ResourceArn)})
}

func (s *Server) listTags(rw http.ResponseWriter, req *http.Request) {
	input, jerr := protocol.DecodeJSON[untagResourceRequest](req)
	if jerr != nil {
		protocol.WriteJSONError(rw, ContentType, jerr)
		return
	}
	protocol.WriteJSONResult(rw, ContentType, struct{ TagList []ecachetypes.Tag }{TagList: s.registry.ListTags(input.ResourceArn)})
}
