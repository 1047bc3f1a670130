package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, handler http.Handler) (*transport.HTTPTransport, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr, err := transport.NewHTTP(srv.URL + "/")
	require.NoError(t, err)
	return tr, srv
}

func TestHTTPTransport_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("posts json and decodes response", func(t *testing.T) {
		var gotRequestID string
		tr, _ := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/login", r.URL.Path)
			require.Contains(t, r.Header.Get("Content-Type"), "application/json")
			require.Equal(t, "go-auth-client", r.Header.Get("User-Agent"))
			gotRequestID = r.Header.Get("X-Request-ID")

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, map[string]string{"username": "alice", "password": "pw"}, body)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accessToken":"t1"}`))
		}))

		resp, err := tr.Request(ctx, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "pw"})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			AccessToken string `json:"accessToken"`
		}
		require.NoError(t, resp.Decode(&out))
		require.Equal(t, "t1", out.AccessToken)

		_, err = uuid.Parse(gotRequestID)
		require.NoError(t, err)
	})

	t.Run("non-2xx is a ResponseError", func(t *testing.T) {
		tr, _ := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"bad credentials"}`))
		}))

		_, err := tr.Request(ctx, http.MethodPost, "/auth/login", nil)
		require.Error(t, err)

		var re *transport.ResponseError
		require.True(t, errors.As(err, &re))
		require.Equal(t, http.StatusUnauthorized, re.StatusCode)
		require.JSONEq(t, `{"message":"bad credentials"}`, string(re.Body))
		require.Equal(t, http.StatusUnauthorized, transport.StatusCode(err))
		require.Contains(t, err.Error(), "POST /auth/login: unexpected status 401")
	})

	t.Run("cookies are forwarded", func(t *testing.T) {
		var sawCookie atomic.Bool
		tr, _ := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/login" {
				http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "r1", Path: "/"})
				return
			}
			if c, err := r.Cookie("refresh"); err == nil && c.Value == "r1" {
				sawCookie.Store(true)
			}
		}))

		_, err := tr.Request(ctx, http.MethodPost, "/auth/login", nil)
		require.NoError(t, err)
		_, err = tr.Request(ctx, http.MethodPost, "/auth/refetch-token", nil)
		require.NoError(t, err)
		require.True(t, sawCookie.Load())
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		tr, err := transport.NewHTTP(srv.URL)
		require.NoError(t, err)
		srv.Close()

		_, err = tr.Request(ctx, http.MethodPost, "/auth/login", nil)
		require.Error(t, err)
		require.Equal(t, 0, transport.StatusCode(err))
	})
}

func TestParseEndpoint(t *testing.T) {
	_, err := transport.ParseEndpoint("https://auth.example.com")
	require.NoError(t, err)

	_, err = transport.ParseEndpoint("auth.example.com")
	require.Error(t, err)

	_, err = transport.ParseEndpoint("ftp://auth.example.com")
	require.ErrorContains(t, err, "scheme must be http or https")

	_, err = transport.ParseEndpoint("https://")
	require.ErrorContains(t, err, "missing host")
}

func TestNewHTTP_ClientOptions(t *testing.T) {
	t.Run("timeout applies regardless of option order", func(t *testing.T) {
		own := &http.Client{}
		for _, options := range [][]transport.HTTPOption{
			{transport.WithTimeout(5 * time.Second), transport.WithHTTPClient(own)},
			{transport.WithHTTPClient(own), transport.WithTimeout(5 * time.Second)},
		} {
			tr, err := transport.NewHTTP("https://auth.example.com", options...)
			require.NoError(t, err)
			require.Equal(t, 5*time.Second, tr.Client().Timeout)
			require.NotNil(t, tr.Client().Jar)
		}

		require.Zero(t, own.Timeout)
		require.Nil(t, own.Jar)
	})

	t.Run("default timeout", func(t *testing.T) {
		tr, err := transport.NewHTTP("https://auth.example.com")
		require.NoError(t, err)
		require.Equal(t, 30*time.Second, tr.Client().Timeout)
	})
}

func TestHTTPTransport_Upload(t *testing.T) {
	ctx := context.Background()

	tr, srv := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/upload", r.URL.Path)
		require.Equal(t, "avatars/alice", r.Header.Get("x-path"))

		reader, err := r.MultipartReader()
		require.NoError(t, err)

		var names, contents []string
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			require.Equal(t, "files", part.FormName())
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			names = append(names, part.FileName())
			contents = append(contents, string(data))
		}
		require.Equal(t, []string{"a.txt", "b.txt"}, names)
		require.Equal(t, []string{"hello", "world"}, contents)
		w.Write([]byte(`{"ok":true}`))
	}))

	var lastSent atomic.Int64
	resp, err := tr.Upload(ctx, "avatars/alice", []transport.File{
		{Name: "a.txt", Content: strings.NewReader("hello")},
		{Name: "b.txt", Content: strings.NewReader("world")},
	}, func(sent, _ int64) {
		lastSent.Store(sent)
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
	require.Greater(t, lastSent.Load(), int64(len("helloworld")))

	require.Equal(t, srv.URL+"/storage/file/avatars/alice/a.txt", tr.FileURL("avatars/alice/a.txt"))
}
