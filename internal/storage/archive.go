// Package storage persists audit artifacts (verified webhook payloads,
// payment receipts) on a pluggable backend.
package storage

import (
	"context"
	"fmt"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/config"
)

// Archive stores opaque audit blobs by key.
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// NewArchive creates an archive backend based on configuration.
func NewArchive(cfg *config.StorageConfig) (Archive, error) {
	switch cfg.Driver {
	case "local", "":
		path := cfg.ArchivePath
		if path == "" {
			path = "./archive"
		}
		return NewLocalArchive(path), nil

	case "s3":
		return NewS3Archive(cfg)

	case "r2":
		return NewR2Archive(cfg)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
