package blob

import (
	"context"
)

// ObjectInfo is a single remote sighting: a vault-relative path, the object's
// last-modified time in unix milliseconds and the exact store key needed to
// fetch or delete that object.
type ObjectInfo struct {
	Path     string
	Mtime    int64
	RemoteID string
}

// PutResult carries the store-confirmed metadata of a completed write.
type PutResult struct {
	RemoteID string
	ETag     string
	Mtime    int64
	Size     int64
}

// Store is the remote object-store collaborator. Every method surfaces
// failures as errors, never as silently empty or partial results.
type Store interface {
	// List enumerates all objects under the configured prefix. Pagination is
	// drained internally; the returned slice is the complete remote view.
	List(ctx context.Context) ([]*ObjectInfo, error)
	// Get fetches the full object body by its store key.
	Get(ctx context.Context, remoteID string) ([]byte, error)
	// Put writes data under the vault-relative path and returns the
	// store-confirmed metadata for the new object.
	Put(ctx context.Context, path string, data []byte) (*PutResult, error)
	// Delete removes the object for the vault-relative path.
	Delete(ctx context.Context, path string) error
}
