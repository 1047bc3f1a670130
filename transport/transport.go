package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Transport performs requests against the auth service. Body is JSON encoded
// when non-nil. A non-2xx status is returned as *ResponseError.
type Transport interface {
	Request(ctx context.Context, method, path string, body any) (*Response, error)
}

// Response is a completed 2xx response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[Response.Decode] %w", err)
	}
	return nil
}

// ResponseError is returned for any non-2xx response. It carries the response
// so callers can surface service-defined error bodies.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// StatusCode extracts the HTTP status of err, or 0 if err is not a
// *ResponseError.
func StatusCode(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
