package output

import (
	"context"
	"io"
)

// ArtifactStore persists run artifacts under slash-separated relative keys.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(ctx context.Context, key string) (string, error)
}
