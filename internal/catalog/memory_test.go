package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryListNewestFirst(t *testing.T) {
	mem := NewMemory()

	base := time.UnixMilli(1700000000000)
	offset := 0
	mem.SetClock(func() time.Time {
		offset++
		return base.Add(time.Duration(offset) * time.Second)
	})

	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		_, err := mem.Create(ctx, App{Title: name, PackageName: "com.example." + name, BlobKey: "k", BlobURL: "u"})
		require.NoError(t, err)
	}

	apps, err := mem.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "third", apps[0].Title)
	assert.Equal(t, "second", apps[1].Title)
	assert.Equal(t, "first", apps[2].Title)
}

func TestMemoryUpdateMerges(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, App{
		Title:       "Demo",
		Description: "initial",
		PackageName: "com.example.demo",
		BlobKey:     "apks/1-demo.apk",
		BlobURL:     "https://cdn.test/apks/1-demo.apk",
	})
	require.NoError(t, err)

	title := "Renamed"
	updated, err := mem.Update(ctx, created.ID, Patch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "initial", updated.Description)
	assert.Equal(t, created.BlobKey, updated.BlobKey)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestMemoryNotFound(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	id := uuid.New()

	_, err := mem.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mem.Update(ctx, id, Patch{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, mem.Delete(ctx, id), ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, App{Title: "Demo", PackageName: "com.example.demo", BlobKey: "k", BlobURL: "u"})
	require.NoError(t, err)

	require.NoError(t, mem.Delete(ctx, created.ID))

	_, err = mem.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Ids are never reused: a second delete of the same id is NotFound.
	assert.ErrorIs(t, mem.Delete(ctx, created.ID), ErrNotFound)
}
