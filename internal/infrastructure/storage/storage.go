package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/99minutos/onboarding-api/internal/core/ports"
)

// Type selects the storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds configuration for photo storage.
type Config struct {
	Type Type
	// PublicURL is the base URL objects are served from. For local storage it
	// is required; for S3 it defaults to the bucket's virtual-hosted URL.
	PublicURL string
	LocalPath string

	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	AWSAccessKey string
	AWSSecretKey string
}

// New builds the storage backend selected by cfg.Type.
func New(ctx context.Context, cfg Config) (ports.PhotoStorage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicURL)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
