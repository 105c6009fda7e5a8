package ports

import (
	"context"
	"io"
)

// ContentStore is the narrow interface to the content-addressed storage that
// hosts media payloads. Payloads are opaque to this client; it only stores
// blobs and resolves content identifiers.
type ContentStore interface {
	// Put stores a blob and returns its content identifier.
	Put(ctx context.Context, r io.Reader) (string, error)
	// Get returns a stream for the blob with the given content identifier.
	Get(ctx context.Context, cid string) (io.ReadCloser, error)
}
