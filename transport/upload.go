package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync/atomic"
)

const (
	uploadPath     = "/storage/upload"
	filePathPrefix = "storage/file/"
	uploadField    = "files"
	xPathHeader    = "x-path"
)

// File is one part of a multipart upload.
type File struct {
	Name    string
	Content io.Reader
}

// ProgressFunc receives the number of bytes sent so far and the total, which is
// -1 when unknown.
type ProgressFunc func(sent, total int64)

// Uploader is implemented by transports that can store files on the service.
type Uploader interface {
	Upload(ctx context.Context, path string, files []File, progress ProgressFunc) (*Response, error)
	FileURL(path string) string
}

var _ Uploader = (*HTTPTransport)(nil)

// Upload streams files as multipart/form-data to /storage/upload, targeting the
// storage folder named by path.
func (t *HTTPTransport) Upload(ctx context.Context, path string, files []File, progress ProgressFunc) (*Response, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		for _, f := range files {
			part, err := mw.CreateFormFile(uploadField, f.Name)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, f.Content); err != nil {
				pw.CloseWithError(fmt.Errorf("copy %s: %w", f.Name, err))
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	var body io.Reader = pr
	if progress != nil {
		body = &progressReader{r: pr, progress: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL(uploadPath), body)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("[HTTPTransport.Upload] %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(xPathHeader, path)

	resp, err := t.do(req, uploadPath)
	// Unblock the writer goroutine if the request ended early.
	pr.Close()
	return resp, err
}

// FileURL returns the public URL of a stored file.
func (t *HTTPTransport) FileURL(path string) string {
	return t.URL(filePathPrefix + path)
}

type progressReader struct {
	r        io.Reader
	sent     atomic.Int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.progress(p.sent.Add(int64(n)), -1)
	}
	return n, err
}
