// Package storage persists run artifacts on the local filesystem or in S3.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"bug-reproducer/internal/application/port/output"
)

var (
	// ErrFileNotFound is returned when a requested artifact does not exist.
	ErrFileNotFound = errors.New("artifact not found")

	// ErrInvalidPath is returned for empty, absolute or escaping keys.
	ErrInvalidPath = errors.New("invalid artifact key")
)

type Config struct {
	// Type is "local" or "s3".
	Type string
	// BaseDir roots local storage.
	BaseDir string

	Bucket string
	Region string
	// Prefix is prepended to every S3 key.
	Prefix string
	// Endpoint overrides the S3 endpoint for S3-compatible services.
	Endpoint      string
	PresignExpiry time.Duration
}

// New builds the ArtifactStore selected by cfg.Type.
func New(cfg Config) (output.ArtifactStore, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base dir is required for local storage")
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if cfg.Region == "" {
			return nil, fmt.Errorf("region is required for S3 storage")
		}
		s3Storage, err := NewS3Storage(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s3Storage, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// cleanKey normalizes a slash-separated key and rejects keys that are
// empty, absolute or climb out of the store root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidPath)
	}
	key = strings.ReplaceAll(key, `\`, "/")
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute keys not allowed: %s", ErrInvalidPath, key)
	}

	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: path traversal detected: %s", ErrInvalidPath, key)
	}
	return clean, nil
}
