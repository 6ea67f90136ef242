// Package httputil provides HTTP-related utilities and constants shared
// by the aggregation pipeline.
package httputil

import "net/http"

// HTTP Method Constants
//
// Path item keys use the lowercase method names defined by the OpenAPI
// specification. Keys outside this set (summary, description, servers,
// parameters, $ref, x-* extensions) are not operation objects.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace" // OAS 3.0+ only
)

// operationMethods is the set of path item keys that hold operation objects.
var operationMethods = map[string]bool{
	MethodGet:     true,
	MethodPut:     true,
	MethodPost:    true,
	MethodDelete:  true,
	MethodOptions: true,
	MethodHead:    true,
	MethodPatch:   true,
	MethodTrace:   true,
}

// IsOperationMethod reports whether a path item key names an operation
// object (one of the lowercase HTTP methods).
func IsOperationMethod(key string) bool {
	return operationMethods[key]
}

// IsSuccessClass reports whether an HTTP status code counts as success
// for availability probing. Redirects are included: a redirecting
// endpoint is reachable.
func IsSuccessClass(status int) bool {
	return status >= http.StatusOK && status < http.StatusBadRequest
}

// IsMethodNotSupported reports whether a status code indicates the
// server rejected the request method itself, in which case a probe may
// retry with a different method.
func IsMethodNotSupported(status int) bool {
	return status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented
}
