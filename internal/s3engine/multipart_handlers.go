package s3engine

import (
	"encoding/xml"
	"io"
	"net/http"

	"awslite/internal/httputil"
)

func (s *Server) createMultipartUpload(rw http.ResponseWriter, req *http.Request, bucket *Bucket, key string) {
	if !ValidateKey(key) {
		writeError(rw, ErrorInvalidArgument("invalid key"))
		return
	}
	metadata := extractMetadata(req.Header)
	contentType := contentTypeOrDefault(req.Header.Get(httputil.HeaderContentType))
	upload := NewMultipartUpload(s.clock.Now(), bucket.Name, key, contentType, metadata)
	bucket.createMultipartUpload(upload)
	writeXML(rw, http.StatusOK, xmlInitiateMultipartUploadResult{
		Bucket:   bucket.Name,
		Key:      key,
		UploadID: upload.UploadID,
	})
}

func (s *Server) uploadPart(rw http.ResponseWriter, req *http.Request, bucket *Bucket, key string, query map[string][]string) {
	uploadID := first(query["uploadId"])
	partNumberRaw := first(query["partNumber"])
	partNumber, ok := parseInt(partNumberRaw)
	if !ok {
		writeError(rw, ErrorInvalidArgument("invalid partNumber"))
		return
	}
	upload, ok := bucket.getMultipartUpload(uploadID)
	if !ok {
		writeError(rw, ErrorNoSuchUpload())
		return
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, MaximumObjectSize+1))
	if err != nil {
		writeError(rw, ErrorInternal(err.Error()))
		return
	}
	part, partErr := upload.UploadPart(s.clock.Now(), partNumber, body)
	if partErr != nil {
		writeError(rw, partErr)
		return
	}
	rw.Header().Set(httputil.HeaderETag, part.ETag)
	rw.WriteHeader(http.StatusOK)
}

func (s *Server) listParts(rw http.ResponseWriter, bucket *Bucket, bucketName, key, uploadID string) {
	upload, ok := bucket.getMultipartUpload(uploadID)
	if !ok {
		writeError(rw, ErrorNoSuchUpload())
		return
	}
	out := xmlListPartsResult{Bucket: bucketName, Key: key, UploadID: uploadID}
	for _, part := range upload.ListParts() {
		out.Parts = append(out.Parts, xmlPart{
			PartNumber:   part.PartNumber,
			ETag:         part.ETag,
			Size:         part.Size,
			LastModified: part.LastModified,
		})
	}
	writeXML(rw, http.StatusOK, out)
}

func (s *Server) completeMultipartUpload(rw http.ResponseWriter, req *http.Request, bucket *Bucket, key, uploadID string) {
	upload, ok := bucket.getMultipartUpload(uploadID)
	if !ok {
		writeError(rw, ErrorNoSuchUpload())
		return
	}
	var reqBody xmlCompleteMultipartUpload
	if err := xml.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		writeError(rw, ErrorInvalidArgument("malformed CompleteMultipartUpload"))
		return
	}
	requested := make([]CompletedPart, 0, len(reqBody.Parts))
	for _, p := range reqBody.Parts {
		requested = append(requested, CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
	}
	obj, err := upload.Complete(s.clock.Now(), requested)
	if err != nil {
		writeError(rw, err)
		return
	}
	bucket.putObject(obj)
	bucket.discardMultipartUpload(uploadID)
	writeXML(rw, http.StatusOK, xmlCompleteMultipartUploadResult{
		Bucket: bucket.Name,
		Key:    key,
		ETag:   obj.ETag,
	})
}

func (s *Server) abortMultipartUpload(rw http.ResponseWriter, bucket *Bucket, uploadID string) {
	if _, ok := bucket.getMultipartUpload(uploadID); !ok {
		writeError(rw, ErrorNoSuchUpload())
		return
	}
	bucket.discardMultipartUpload(uploadID)
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMultipartUploads(rw http.ResponseWriter, bucket *Bucket) {
	out := xmlListMultipartUploadsResult{Bucket: bucket.Name}
	for _, upload := range bucket.listMultipartUploads() {
		out.Uploads = append(out.Uploads, xmlUploadEntry{
			Key:       upload.Key,
			UploadID:  upload.UploadID,
			Initiated: upload.Created,
		})
	}
	writeXML(rw, http.StatusOK, out)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
