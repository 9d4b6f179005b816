// Package storage is the blob-store collaborator for uploaded book files.
// The application never reads file content back through this layer; it only
// hands bytes over and keeps the returned ref.
package storage

import (
	"context"
	"io"
)

// Metadata describes an upload. ContentType is the declared type from the
// client; callers validate it before storing.
type Metadata struct {
	Filename    string
	ContentType string
	UploaderID  string
}

// BlobStore stores an uploaded file and returns an opaque ref for it.
type BlobStore interface {
	Store(ctx context.Context, r io.Reader, meta Metadata) (ref string, err error)
}
