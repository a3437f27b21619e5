package ports

import (
	"context"
	"io"
)

// PhotoStorage persists profile photos and returns a URL clients can load.
type PhotoStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}
