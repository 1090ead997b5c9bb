// Package protocol implements the shared wire-envelope dispatch that every
// emulated service's front-end is built on: AWS JSON 1.0/1.1 (request
// dispatched by X-Amz-Target, encoded as flat JSON), AWS Query (form-encoded
// Action field, XML response), and plain REST+JSON (path-routed, JSON body).
// S3's REST/XML envelope is its own family and lives in internal/s3engine,
// since its operation identification (method + path segments + query-string
// flags) doesn't fit the single-action-per-request shape the other three
// share.
//
// Each family exposes the same two-sided contract: decode an *http.Request
// into a typed operation name plus a typed body, and encode a typed result
// or typed error back into an *http.ResponseWriter. Individual services own
// their request/response shapes (mostly the real aws-sdk-go-v2 service
// packages) and only reach into this package for the envelope mechanics.
package protocol
