package attachment

import (
	"context"
	"io"
)

// Store is the opaque blob store the idea service persists attachment
// metadata against. Implementations only deal in streams and paths; the
// (path, original name, mime) triple lives on the idea row.
type Store interface {
	Put(ctx context.Context, reader io.Reader, size int64, originalName, mime string) (string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
