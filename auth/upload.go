package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/transport"
)

// Upload stores files in the service's storage folder named by path.
func (m *SessionManager) Upload(ctx context.Context, path string, files []transport.File, progress transport.ProgressFunc) (*transport.Response, error) {
	uploader, ok := m.transport.(transport.Uploader)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupported, "[SessionManager.Upload] transport cannot upload")
	}
	return uploader.Upload(ctx, path, files, progress)
}

// FileURL returns the public URL of a stored file.
func (m *SessionManager) FileURL(path string) string {
	if uploader, ok := m.transport.(transport.Uploader); ok {
		return uploader.FileURL(path)
	}
	return strings.TrimRight(m.endpoint, "/") + "/storage/file/" + strings.TrimLeft(path, "/")
}
