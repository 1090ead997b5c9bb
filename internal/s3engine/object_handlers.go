package s3engine

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"awslite/internal/httputil"
)

const metadataHeaderPrefix = "X-Amz-Meta-"

func keyParam(ps httprouter.Params) string {
	return strings.TrimPrefix(ps.ByName("key"), "/")
}

func (s *Server) putObjectOrPart(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	bucketName := ps.ByName("bucket")
	key := keyParam(ps)
	bucket, ok := s.buckets.GetBucket(bucketName)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(bucketName))
		return
	}
	if !ValidateKey(key) {
		writeError(rw, ErrorInvalidArgument("invalid key"))
		return
	}
	query := req.URL.Query()
	if query.Has("partNumber") && query.Has("uploadId") {
		s.uploadPart(rw, req, bucket, key, query)
		return
	}
	if query.Has("tagging") {
		s.putObjectTagging(rw, req, bucket, key)
		return
	}
	if copySource := req.Header.Get("X-Amz-Copy-Source"); copySource != "" {
		s.copyObject(rw, bucket, key, copySource, req.Header.Get("X-Amz-Metadata-Directive"))
		return
	}
	s.putObject(rw, req, bucket, key)
}

func (s *Server) putObject(rw http.ResponseWriter, req *http.Request, bucket *Bucket, key string) {
	body, err := io.ReadAll(io.LimitReader(req.Body, MaximumObjectSize+1))
	if err != nil {
		writeError(rw, ErrorInternal(err.Error()))
		return
	}
	if len(body) > MaximumObjectSize {
		writeError(rw, ErrorEntityTooLarge())
		return
	}
	metadata := extractMetadata(req.Header)
	obj := NewObject(s.clock.Now(), key, body, contentTypeOrDefault(req.Header.Get(httputil.HeaderContentType)), metadata)
	bucket.putObject(obj)
	rw.Header().Set(httputil.HeaderETag, obj.ETag)
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) copyObject(rw http.ResponseWriter, dstBucket *Bucket, dstKey, copySourceHeader, metadataDirective string) {
	srcBucketName, srcKey, ok := parseCopySource(copySourceHeader)
	if !ok {
		writeError(rw, ErrorInvalidArgument("malformed x-amz-copy-source"))
		return
	}
	srcBucket, ok := s.buckets.GetBucket(srcBucketName)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(srcBucketName))
		return
	}
	srcObj, ok := srcBucket.getObject(srcKey)
	if !ok {
		writeError(rw, ErrorNoSuchKey(srcKey))
		return
	}
	metadata := srcObj.Metadata
	contentType := srcObj.ContentType
	if metadataDirective == "REPLACE" {
		metadata = make(map[string]string)
	}
	body := make([]byte, len(srcObj.Body))
	copy(body, srcObj.Body)
	obj := NewObject(s.clock.Now(), dstKey, body, contentType, metadata)
	dstBucket.putObject(obj)
	writeXML(rw, http.StatusOK, xmlCopyObjectResult{ETag: obj.ETag, LastModified: obj.LastModified})
}

func (s *Server) getObjectOrParts(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	s.retrieveObject(rw, req, ps, true)
}

func (s *Server) headObject(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	s.retrieveObject(rw, req, ps, false)
}

func (s *Server) retrieveObject(rw http.ResponseWriter, req *http.Request, ps httprouter.Params, withBody bool) {
	bucketName := ps.ByName("bucket")
	key := keyParam(ps)
	bucket, ok := s.buckets.GetBucket(bucketName)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(bucketName))
		return
	}
	query := req.URL.Query()
	if query.Has("uploadId") {
		s.listParts(rw, bucket, ps.ByName("bucket"), key, query.Get("uploadId"))
		return
	}
	if query.Has("tagging") {
		s.getObjectTagging(rw, bucket, key)
		return
	}
	obj, ok := bucket.getObject(key)
	if !ok {
		writeError(rw, ErrorNoSuchKey(key))
		return
	}
	rw.Header().Set(httputil.HeaderETag, obj.ETag)
	rw.Header().Set(httputil.HeaderContentType, obj.ContentType)
	for k, v := range obj.Metadata {
		rw.Header().Set(metadataHeaderPrefix+k, v)
	}
	if rangeHeader := req.Header.Get("Range"); rangeHeader != "" {
		byteRange, ok := parseRange(rangeHeader, obj.Size)
		if !ok {
			writeError(rw, ErrorInvalidArgument("invalid Range header"))
			return
		}
		rw.Header().Set("Content-Range", contentRangeHeader(byteRange, obj.Size))
		rw.Header().Set(httputil.HeaderContentLength, strconv.FormatInt(byteRange.End-byteRange.Start+1, 10))
		rw.WriteHeader(http.StatusPartialContent)
		if withBody {
			_, _ = rw.Write(obj.Body[byteRange.Start : byteRange.End+1])
		}
		return
	}
	rw.Header().Set(httputil.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	rw.WriteHeader(http.StatusOK)
	if withBody {
		_, _ = rw.Write(obj.Body)
	}
}

func contentRangeHeader(r ByteRange, size int64) string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) + "/" + strconv.FormatInt(size, 10)
}

func (s *Server) deleteObjectOrUpload(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	bucketName := ps.ByName("bucket")
	key := keyParam(ps)
	bucket, ok := s.buckets.GetBucket(bucketName)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(bucketName))
		return
	}
	query := req.URL.Query()
	if uploadID := query.Get("uploadId"); uploadID != "" {
		s.abortMultipartUpload(rw, bucket, uploadID)
		return
	}
	if query.Has("tagging") {
		if obj, ok := bucket.getObject(key); ok {
			obj.Tags = make(map[string]string)
		}
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	bucket.deleteObject(key)
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) postObject(rw http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	bucketName := ps.ByName("bucket")
	key := keyParam(ps)
	bucket, ok := s.buckets.GetBucket(bucketName)
	if !ok {
		writeError(rw, ErrorNoSuchBucket(bucketName))
		return
	}
	query := req.URL.Query()
	switch {
	case query.Has("uploads"):
		s.createMultipartUpload(rw, req, bucket, key)
	case query.Get("uploadId") != "":
		s.completeMultipartUpload(rw, req, bucket, key, query.Get("uploadId"))
	default:
		writeError(rw, ErrorNotImplemented("POST object"))
	}
}

func (s *Server) putObjectTagging(rw http.ResponseWriter, req *http.Request, bucket *Bucket, key string) {
	obj, ok := bucket.getObject(key)
	if !ok {
		writeError(rw, ErrorNoSuchKey(key))
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
	obj.Tags = tags
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) getObjectTagging(rw http.ResponseWriter, bucket *Bucket, key string) {
	obj, ok := bucket.getObject(key)
	if !ok {
		writeError(rw, ErrorNoSuchKey(key))
		return
	}
	out := xmlTagging{}
	for k, v := range obj.Tags {
		out.TagSet = append(out.TagSet, xmlTagRow{Key: k, Value: v})
	}
	writeXML(rw, http.StatusOK, out)
}

func extractMetadata(header http.Header) map[string]string {
	metadata := make(map[string]string)
	for name, values := range header {
		if strings.HasPrefix(name, metadataHeaderPrefix) && len(values) > 0 {
			metadata[strings.TrimPrefix(name, metadataHeaderPrefix)] = values[0]
		}
	}
	return metadata
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return httputil.ContentTypeApplicationOctetStream
	}
	return contentType
}
