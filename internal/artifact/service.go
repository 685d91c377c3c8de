// Package artifact implements the publish / replace / remove lifecycle
// for application packages across two independently failing stores: the
// blob store holding binaries and the catalog holding metadata records.
//
// The ordering contract: blobs are written strictly before the catalog
// record that references them, and the catalog record is deleted strictly
// after its blobs. A partial failure can therefore only leave an orphaned
// blob (wasted space, invisible to readers), never a record pointing at a
// missing object. Remove is the one exception: its final catalog delete
// can fail after the blobs are gone, which is why that call is retried.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hangar/internal/blob"
	"hangar/internal/catalog"
	"hangar/internal/event"
)

const (
	removeDeleteAttempts = 3
	removeDeleteBackoff  = 100 * time.Millisecond
	downloadURLExpiry    = 15 * time.Minute
)

// Config wires the stores and hooks a Service depends on.
type Config struct {
	Blobs  blob.Store
	Apps   catalog.Catalog
	Events event.Sink
	// Now overrides the clock used for key generation. Defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates the blob store and the catalog.
type Service struct {
	blobs  blob.Store
	apps   catalog.Catalog
	events event.Sink
	now    func() time.Time
}

// New validates the configuration and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Blobs == nil {
		return nil, errors.New("blob store is required")
	}
	if cfg.Apps == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Events == nil {
		cfg.Events = event.Nop{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		blobs:  cfg.Blobs,
		apps:   cfg.Apps,
		events: cfg.Events,
		now:    cfg.Now,
	}, nil
}

// List returns all apps, newest first.
func (s *Service) List(ctx context.Context) ([]catalog.App, error) {
	return s.apps.List(ctx)
}

// Get fetches a single app by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (catalog.App, error) {
	return s.apps.Get(ctx, id)
}

// DownloadURL returns a time-limited signed URL for the app's package
// binary, for clients that cannot reach the public base directly.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.blobs.SignedURL(ctx, app.BlobKey, downloadURLExpiry)
}

// Publish stores the package binary (and icon, if supplied), then creates
// the catalog record referencing both. The package upload is mandatory
// and its failure aborts the publish before any record exists. An icon
// upload failure is tolerated: the app is published without an icon. A
// failing final catalog write leaves the uploaded blobs orphaned and is
// reported to the caller.
func (s *Service) Publish(ctx context.Context, in PublishInput) (catalog.App, error) {
	if err := in.validate(); err != nil {
		return catalog.App{}, err
	}

	now := s.now()
	blobKey := objectKey(nsPackage, now, in.Package.Filename)
	if err := s.put(ctx, blobKey, in.Package); err != nil {
		return catalog.App{}, err
	}

	var iconKey, iconURL *string
	if in.Icon != nil {
		key := objectKey(nsIcon, now, in.Icon.Filename)
		if err := s.put(ctx, key, in.Icon); err != nil {
			s.events.Emit(ctx, event.IconStoreFailed, map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		} else {
			url := s.blobs.PublicURL(key)
			iconKey, iconURL = &key, &url
		}
	}

	title := in.Title
	if title == "" {
		title = in.Package.Filename
	}

	created, err := s.apps.Create(ctx, catalog.App{
		Title:       title,
		Description: in.Description,
		PackageName: in.PackageName,
		Version:     in.Version,
		VersionCode: in.VersionCode,
		BlobKey:     blobKey,
		BlobURL:     s.blobs.PublicURL(blobKey),
		IconKey:     iconKey,
		IconURL:     iconURL,
	})
	if err != nil {
		return catalog.App{}, err
	}

	s.events.Emit(ctx, event.AppPublished, map[string]any{
		"app_id":       created.ID,
		"package_name": created.PackageName,
		"blob_key":     created.BlobKey,
	})
	return created, nil
}

// Replace merges a metadata patch into an existing record and optionally
// rotates the package binary and icon to freshly uploaded objects. New
// objects are uploaded before the old ones are deleted, so there is no
// window without a valid blob; a failing delete of an old object is
// tolerated and reported through the event sink. The final catalog update
// failure is returned to the caller with any completed rotation left in
// effect.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, in ReplaceInput) (catalog.App, error) {
	if err := in.validate(); err != nil {
		return catalog.App{}, err
	}

	existing, err := s.apps.Get(ctx, id)
	if err != nil {
		return catalog.App{}, err
	}

	now := s.now()
	patch := in.Patch.toCatalog()

	if in.Package != nil {
		key := objectKey(nsPackage, now, in.Package.Filename)
		if err := s.put(ctx, key, in.Package); err != nil {
			return catalog.App{}, err
		}
		s.deleteTolerated(ctx, id, existing.BlobKey)
		url := s.blobs.PublicURL(key)
		patch.BlobKey, patch.BlobURL = &key, &url
	}

	if in.Icon != nil {
		key := objectKey(nsIcon, now, in.Icon.Filename)
		if err := s.put(ctx, key, in.Icon); err != nil {
			return catalog.App{}, err
		}
		if existing.IconKey != nil {
			s.deleteTolerated(ctx, id, *existing.IconKey)
		}
		url := s.blobs.PublicURL(key)
		patch.IconKey, patch.IconURL = &key, &url
	}

	updated, err := s.apps.Update(ctx, id, patch)
	if err != nil {
		return catalog.App{}, err
	}

	s.events.Emit(ctx, event.AppReplaced, map[string]any{
		"app_id":   updated.ID,
		"blob_key": updated.BlobKey,
	})
	return updated, nil
}

// Remove deletes the app's blobs and then its catalog record. Blob delete
// failures are tolerated so a backend hiccup never blocks removal of the
// record. The catalog delete comes last and is retried: it is the one
// step whose failure leaves a record referencing deleted objects.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return err
	}

	s.deleteTolerated(ctx, id, app.BlobKey)
	if app.IconKey != nil {
		s.deleteTolerated(ctx, id, *app.IconKey)
	}

	for attempt := 1; ; attempt++ {
		err = s.apps.Delete(ctx, id)
		if err == nil || errors.Is(err, catalog.ErrNotFound) || attempt >= removeDeleteAttempts {
			break
		}
		s.events.Emit(ctx, event.RecordDeleteRetried, map[string]any{
			"app_id":  id,
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(removeDeleteBackoff):
		}
	}
	if err != nil {
		return err
	}

	s.events.Emit(ctx, event.AppRemoved, map[string]any{
		"app_id":   id,
		"blob_key": app.BlobKey,
	})
	return nil
}

func (s *Service) put(ctx context.Context, key string, u *Upload) error {
	return s.blobs.Put(ctx, key, bytes.NewReader(u.Data), int64(len(u.Data)), u.ContentType)
}

// deleteTolerated removes an old object, surfacing failure through the
// event sink only. An unreachable stale object is acceptable; an
// operation blocked by an unrelated delete failure is not.
func (s *Service) deleteTolerated(ctx context.Context, id uuid.UUID, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.events.Emit(ctx, event.BlobDeleteFailed, map[string]any{
			"app_id": id,
			"key":    key,
			"error":  err.Error(),
		})
	}
}
