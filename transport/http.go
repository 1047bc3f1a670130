package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
	defaultAgent    = "go-auth-client"
)

var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport talks JSON over HTTP to the auth service rooted at endpoint.
// Cookies set by the service are kept in a jar and sent back on later
// requests, the equivalent of a browser's withCredentials.
type HTTPTransport struct {
	endpoint  *url.URL
	client    *http.Client
	userAgent string
	timeout   *time.Duration
}

type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the client the transport copies from. The caller's client
// is never modified; the copy gets a cookie jar if it has none.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

func WithUserAgent(agent string) HTTPOption {
	return func(t *HTTPTransport) {
		t.userAgent = agent
	}
}

// WithTimeout sets the request timeout regardless of option order.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		t.timeout = &timeout
	}
}

// NewHTTP creates a transport for endpoint, which must be an absolute URL.
func NewHTTP(endpoint string, options ...HTTPOption) (*HTTPTransport, error) {
	u, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	t := &HTTPTransport{
		endpoint:  u,
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultAgent,
	}
	for _, opt := range options {
		opt(t)
	}

	client := *t.client
	if t.timeout != nil {
		client.Timeout = *t.timeout
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("[transport.NewHTTP] cookiejar.New: %w", err)
		}
		client.Jar = jar
	}
	t.client = &client
	return t, nil
}

// ParseEndpoint validates an endpoint base URL.
func ParseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("[transport.ParseEndpoint] %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[transport.ParseEndpoint] %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("[transport.ParseEndpoint] %q: missing host", endpoint)
	}
	return u, nil
}

// Endpoint returns the base URL requests are resolved against.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint.String()
}

// Client returns the underlying client, sharing the cookie jar.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// URL resolves path against the endpoint.
func (t *HTTPTransport) URL(path string) string {
	return t.endpoint.String() + "/" + strings.TrimLeft(path, "/")
}

func (t *HTTPTransport) Request(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[HTTPTransport.Request] encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("[HTTPTransport.Request] %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", "application/json")
	return t.do(req, path)
}

func (t *HTTPTransport) do(req *http.Request, path string) (*Response, error) {
	req.Header.Set(requestIDHeader, uuid.New().String())
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[HTTPTransport] %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[HTTPTransport] %s %s read body: %w", req.Method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       data,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
