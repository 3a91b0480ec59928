// Package store persists the configurator's state as opaque, versioned blobs
// keyed by a fixed name. Every write carries the version the caller read, so
// concurrent read-modify-write cycles fail with ErrVersionConflict instead of
// silently overwriting each other.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("blob not found")
	ErrVersionConflict   = errors.New("blob version conflict")
	ErrUnsupportedSchema = errors.New("unsupported schema version")
)

// Blob is a stored document and the opaque version token it was read at.
type Blob struct {
	Data    []byte
	Version string
}

// BlobStore is a key-value store with optimistic concurrency. Put with an
// empty expectedVersion only succeeds if the key does not exist yet.
type BlobStore interface {
	Get(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error)
	Ping(ctx context.Context) error
}

// Fixed blob names under the configured key prefix.
const (
	ConfigurationsKey = "configurations"
	WalletKey         = "wallet"
)

// Key joins the prefix and name into the backend key.
func Key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
