// Package storage is the object store for assessment documents and the
// questionnaire, with path-based access rules layered on top.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/selfassess/internal/store"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Object is a stored document.
type Object struct {
	Path        string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// ObjectInfo describes an object without its content.
type ObjectInfo struct {
	Path      string
	Size      int64
	UpdatedAt time.Time
}

// Bucket is a flat key/value object store.
type Bucket interface {
	Put(ctx context.Context, path, contentType string, data []byte) error
	Get(ctx context.Context, path string) (*Object, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendGCS    = "gcs"
)

// Config selects and configures the bucket backend.
type Config struct {
	Backend         string `mapstructure:"backend"`
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendSQLite:
		return nil
	case BackendGCS:
		if c.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the gcs backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend: %q (supported: sqlite, gcs)", c.Backend)
	}
}

// Open creates the configured bucket. objects backs the sqlite backend.
func Open(ctx context.Context, cfg Config, objects store.ObjectRepo) (Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendGCS {
		return NewGCSBucket(ctx, cfg.Bucket, cfg.CredentialsFile)
	}
	return NewSQLiteBucket(objects), nil
}
