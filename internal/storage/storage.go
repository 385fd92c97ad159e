// Package storage contains the object-storage abstraction for remote library
// assets. Implementations must avoid using local disk and rely on streaming
// I/O only.
package storage

import (
	"context"
	"io"
)

// UploadOptions define how an asset is placed in the store.
// BaseName is the desired object name; when UniqueName is set the
// implementation appends a collision-resistant suffix. Overwrite false means
// an existing object under the final name is an error rather than replaced.
type UploadOptions struct {
	Folder      string
	BaseName    string
	ContentType string
	Size        int64
	Overwrite   bool
	UniqueName  bool
	Tags        []string
}

// UploadResult describes a stored asset: the URL used for redirect/fetch, the
// provider identifier used for deletion, and the stored byte size. URL and
// PublicID are written together into metadata and must stay consistent.
type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int64
}

// Storage is the remote asset-hosting client interface.
type Storage interface {
	// Upload streams the payload into the store and returns where it landed.
	Upload(ctx context.Context, r io.Reader, opt UploadOptions) (UploadResult, error)
	// Destroy removes an asset by its provider identifier.
	Destroy(ctx context.Context, publicID string) error
}
