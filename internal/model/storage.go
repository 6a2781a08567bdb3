package model

import (
	"context"
	"io"
)

// Storage holds site media objects (currently only the logo). Upload returns
// the public URL of the stored object.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
