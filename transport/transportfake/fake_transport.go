package transportfake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/transport"
)

var _ transport.Transport = (*FakeTransport)(nil)

// Handler produces the outcome of one request. Returning a nil response with a
// nil error yields an empty 200.
type Handler func(ctx context.Context, body any) (*transport.Response, error)

// Call records a request made through the fake.
type Call struct {
	Method string
	Path   string
	Body   any
}

// FakeTransport routes requests to per-path handlers and records every call.
type FakeTransport struct {
	handlers map[string]Handler
	calls    []Call
	lock     sync.RWMutex
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		handlers: make(map[string]Handler),
	}
}

// Handle installs h for method and path, replacing any previous handler.
func (ft *FakeTransport) Handle(method, path string, h Handler) {
	ft.lock.Lock()
	defer ft.lock.Unlock()
	ft.handlers[method+" "+path] = h
}

// RespondJSON makes method and path return v encoded as JSON.
func (ft *FakeTransport) RespondJSON(method, path string, v any) {
	ft.Handle(method, path, func(context.Context, any) (*transport.Response, error) {
		return JSONResponse(v)
	})
}

// RespondStatus makes method and path fail with status and body.
func (ft *FakeTransport) RespondStatus(method, path string, status int, body string) {
	ft.Handle(method, path, func(context.Context, any) (*transport.Response, error) {
		return nil, &transport.ResponseError{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Body:       []byte(body),
		}
	})
}

func (ft *FakeTransport) Request(ctx context.Context, method, path string, body any) (*transport.Response, error) {
	ft.lock.Lock()
	ft.calls = append(ft.calls, Call{Method: method, Path: path, Body: body})
	h, ok := ft.handlers[method+" "+path]
	ft.lock.Unlock()

	if !ok {
		return nil, &transport.ResponseError{Method: method, Path: path, StatusCode: http.StatusNotFound}
	}
	resp, err := h(ctx, body)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = &transport.Response{StatusCode: http.StatusOK}
	}
	return resp, nil
}

// Calls returns the recorded calls to path.
func (ft *FakeTransport) Calls(path string) []Call {
	ft.lock.RLock()
	defer ft.lock.RUnlock()

	calls := make([]Call, 0)
	for _, c := range ft.calls {
		if c.Path == path {
			calls = append(calls, c)
		}
	}
	return calls
}

// JSONResponse builds a 200 response with v as its body.
func JSONResponse(v any) (*transport.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("[transportfake.JSONResponse] %w", err)
	}
	return &transport.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       data,
	}, nil
}
