package storage

import (
	"context"
	"io"
)

// BlobStore abstracts where attachment payloads live. Keys are
// slash-separated paths scoped by the owning request, e.g.
// "request_42/transcript.pdf".
type BlobStore interface {
	Save(ctx context.Context, key string, reader io.Reader) (string, error)
}
