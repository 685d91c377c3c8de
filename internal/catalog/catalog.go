// Package catalog holds the structured metadata records for published
// application packages. The Catalog interface is the seam between the
// artifact lifecycle logic and the backing store; the Postgres
// implementation is the production one, the in-memory implementation
// backs tests.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the referenced app id has no record.
var ErrNotFound = errors.New("app not found")

// App describes a published application package.
type App struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PackageName string    `json:"package_name"`
	Version     string    `json:"version,omitempty"`
	VersionCode int64     `json:"version_code,omitempty"`
	BlobKey     string    `json:"blob_key"`
	BlobURL     string    `json:"blob_url"`
	IconKey     *string   `json:"icon_key,omitempty"`
	IconURL     *string   `json:"icon_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Patch carries a partial update. Nil fields are left untouched by Update.
type Patch struct {
	Title       *string
	Description *string
	PackageName *string
	Version     *string
	VersionCode *int64
	BlobKey     *string
	BlobURL     *string
	IconKey     *string
	IconURL     *string
}

// Catalog is the record store capability required by the artifact service.
// Update merges the supplied patch into the stored record; List returns
// records newest first. Implementations never retry on their own.
type Catalog interface {
	Create(ctx context.Context, app App) (App, error)
	Get(ctx context.Context, id uuid.UUID) (App, error)
	List(ctx context.Context) ([]App, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (App, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Fault wraps a backend failure reported by a catalog implementation.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string { return "catalog " + f.Op + ": " + f.Err.Error() }

func (f *Fault) Unwrap() error { return f.Err }

func faultf(op string, err error) error {
	return &Fault{Op: op, Err: err}
}
