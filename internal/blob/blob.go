// Package blob defines the object-storage capability the artifact service
// writes package binaries and icons through.
package blob

import (
	"context"
	"io"
	"time"
)

// Store uploads and removes named binary objects. Delete is idempotent:
// removing a key that holds no object succeeds. PublicURL derives the
// browser-accessible URL for a key and never fails; SignedURL asks the
// backend for a time-limited URL that bypasses the public base.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Fault wraps a transport or backend failure from the object store.
type Fault struct {
	Op  string
	Key string
	Err error
}

func (f *Fault) Error() string { return "blob " + f.Op + " " + f.Key + ": " + f.Err.Error() }

func (f *Fault) Unwrap() error { return f.Err }
