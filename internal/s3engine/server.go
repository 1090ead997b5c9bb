package s3engine

import (
	"encoding/xml"
	"net/http"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"

	"awslite/internal/httputil"
)

// NewServer returns a new S3 REST server backed by the given clock.
func NewServer(clock clockwork.Clock, region string) *Server {
	s := &Server{
		buckets: NewBuckets(clock, region),
		clock:   clock,
		region:  region,
	}
	s.router = httprouter.New()
	s.registerRoutes()
	return s
}

var _ http.Handler = (*Server)(nil)

// Server implements the path-style S3 REST/XML surface described in
// spec.md §6.1. Unlike sqsengine's single-envelope AWS-JSON dispatch, S3
// routes are distinguished by (method, path segments, query-string flags),
// so dispatch happens through an [httprouter.Router] with catch-all bucket
// and bucket/key patterns, with the final operation chosen by inspecting
// the query string inside each handler.
type Server struct {
	router  *httprouter.Router
	buckets *Buckets
	clock   clockwork.Clock
	region  string
}

// Buckets returns the underlying bucket registry.
func (s *Server) Buckets() *Buckets {
	return s.buckets
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.listBuckets)
	s.router.PUT("/:bucket", s.putBucket)
	s.router.DELETE("/:bucket", s.deleteBucket)
	s.router.HEAD("/:bucket", s.headBucket)
	s.router.GET("/:bucket", s.getBucket)
	s.router.POST("/:bucket", s.postBucket)

	s.router.PUT("/:bucket/*key", s.putObjectOrPart)
	s.router.GET("/:bucket/*key", s.getObjectOrParts)
	s.router.HEAD("/:bucket/*key", s.headObject)
	s.router.DELETE("/:bucket/*key", s.deleteObjectOrUpload)
	s.router.POST("/:bucket/*key", s.postObject)
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(rw, req)
}

func (s *Server) listBuckets(rw http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	buckets := s.buckets.ListBuckets()
	out := xmlListAllMyBucketsResult{}
	for _, b := range buckets {
		out.Buckets = append(out.Buckets, xmlBucket{Name: b.Name, CreationDate: b.Created})
	}
	writeXML(rw, http.StatusOK, out)
}

func (s *Server) putBucket(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	name := ps.ByName("bucket")
	query := req.URL.Query()
	switch {
	case query.Has("versioning"):
		s.putBucketVersioning(rw, req, name)
		return
	case query.Has("tagging"):
		s.putBucketTagging(rw, req, name)
		return
	}
	bucket, err := s.buckets.CreateBucket(name)
	if err != nil && bucket == nil {
		writeError(rw, err)
		return
	}
	rw.Header().Set(httputil.HeaderContentType, httputil.ContentTypeXML)
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) deleteBucket(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	name := ps.ByName("bucket")
	if req.URL.Query().Has("tagging") {
		if bucket, ok := s.buckets.GetBucket(name); ok {
			bucket.mu.Lock()
			bucket.Tags = make(map[string]string)
			bucket.mu.Unlock()
		}
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.buckets.DeleteBucket(name); err != nil {
		writeError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) headBucket(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	if _, ok := s.buckets.GetBucket(ps.ByName("bucket")); !ok {
		rw.WriteHeader(http.StatusNotFound)
		return
	}
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) getBucket(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	name := ps.ByName("bucket")
	bucket, ok := s.buckets.GetBucket(name)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(name))
		return
	}
	query := req.URL.Query()
	switch {
	case query.Has("location"):
		writeXML(rw, http.StatusOK, xmlLocationConstraint{LocationConstraintText: bucket.Region})
	case query.Has("versioning"):
		status := ""
		if bucket.Versioning != VersioningUnset {
			status = string(bucket.Versioning)
		}
		writeXML(rw, http.StatusOK, xmlVersioningConfiguration{Status: status})
	case query.Has("tagging"):
		writeXML(rw, http.StatusOK, bucketTaggingXML(bucket))
	case query.Has("uploads"):
		s.listMultipartUploads(rw, bucket)
	default:
		s.listObjectsV2(rw, req, bucket)
	}
}

func (s *Server) postBucket(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	name := ps.ByName("bucket")
	bucket, ok := s.buckets.GetBucket(name)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(name))
		return
	}
	if !req.URL.Query().Has("delete") {
		writeError(rw, ErrorNotImplemented("POST /"+name))
		return
	}
	s.deleteObjects(rw, req, bucket)
}

func (s *Server) putBucketVersioning(rw http.ResponseWriter, req *http.Request, name string) {
	bucket, ok := s.buckets.GetBucket(name)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(name))
		return
	}
	var cfg xmlVersioningConfiguration
	if err := xml.NewDecoder(req.Body).Decode(&cfg); err != nil {
		writeError(rw, ErrorInvalidArgument("malformed VersioningConfiguration"))
		return
	}
	bucket.mu.Lock()
	bucket.Versioning = VersioningStatus(cfg.Status)
	bucket.mu.Unlock()
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) putBucketTagging(rw http.ResponseWriter, req *http.Request, name string) {
	bucket, ok := s.buckets.GetBucket(name)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(name))
		return
	}
	var tagging xmlTagging
	if err := xml.NewDecoder(req.Body).Decode(&tagging); err != nil {
		writeError(rw, ErrorInvalidArgument("malformed Tagging"))
		return
	}
	tags := make(map[string]string, len(tagging.TagSet))
	for _, t := range tagging.TagSet {
		tags[t.Key] = t.Value
	}
	bucket.mu.Lock()
	bucket.Tags = tags
	bucket.mu.Unlock()
	rw.WriteHeader(http.StatusOK)
}

func bucketTaggingXML(bucket *Bucket) xmlTagging {
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()
	out := xmlTagging{}
	for k, v := range bucket.Tags {
		out.TagSet = append(out.TagSet, xmlTagRow{Key: k, Value: v})
	}
	return out
}

func (s *Server) listObjectsV2(rw http.ResponseWriter, req *http.Request, bucket *Bucket) {
	query := req.URL.Query()
	input := ListObjectsV2Input{
		Prefix:            query.Get("prefix"),
		Delimiter:         query.Get("delimiter"),
		StartAfter:        query.Get("start-after"),
		ContinuationToken: query.Get("continuation-token"),
		MaxKeys:           DefaultMaxKeys,
	}
	if maxKeys := query.Get("max-keys"); maxKeys != "" {
		if n, ok := parseInt(maxKeys); ok {
			input.MaxKeys = n
		}
	}
	result := bucket.ListObjectsV2(input)
	out := xmlListBucketResult{
		Name:                  bucket.Name,
		Prefix:                input.Prefix,
		Delimiter:             input.Delimiter,
		MaxKeys:               input.MaxKeys,
		IsTruncated:           result.IsTruncated,
		NextContinuationToken: result.NextContinuationToken,
	}
	for _, obj := range result.Contents {
		out.Contents = append(out.Contents, xmlObject{
			Key:          obj.Key,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			Size:         obj.Size,
			StorageClass: string(s3types.ObjectStorageClassStandard),
		})
	}
	for _, prefix := range result.CommonPrefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, xmlCommonPrefix{Prefix: prefix})
	}
	out.KeyCount = len(out.Contents) + len(out.CommonPrefixes)
	writeXML(rw, http.StatusOK, out)
}

func (s *Server) deleteObjects(rw http.ResponseWriter, req *http.Request, bucket *Bucket) {
	var reqBody xmlDeleteRequest
	if err := xml.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		writeError(rw, ErrorInvalidArgument("malformed Delete"))
		return
	}
	keys := make([]string, 0, len(reqBody.Objects))
	for _, o := range reqBody.Objects {
		keys = append(keys, o.Key)
	}
	result := bucket.DeleteObjects(keys)
	out := xmlDeleteResult{}
	if !reqBody.Quiet {
		for _, k := range result.Deleted {
			out.Deleted = append(out.Deleted, xmlDeletedEntry{Key: k})
		}
	}
	for _, e := range result.Errors {
		out.Errors = append(out.Errors, xmlErrorEntry{Key: e.Key, Code: e.Code, Message: e.Message})
	}
	writeXML(rw, http.StatusOK, out)
}

func writeXML(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set(httputil.HeaderContentType, httputil.ContentTypeXML)
	rw.WriteHeader(status)
	_ = xml.NewEncoder(rw).Encode(body)
}

func writeError(rw http.ResponseWriter, err *Error) {
	rw.Header().Set(httputil.HeaderContentType, httputil.ContentTypeXML)
	rw.WriteHeader(err.StatusCode)
	_ = xml.NewEncoder(rw).Encode(err)
}

func parseInt(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
