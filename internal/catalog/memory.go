package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Catalog used by tests and local development.
// It honours the same merge and ordering semantics as the Postgres
// implementation.
type Memory struct {
	mu   sync.Mutex
	apps map[uuid.UUID]App
	now  func() time.Time
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		apps: make(map[uuid.UUID]App),
		now:  time.Now,
	}
}

// SetClock overrides the creation-timestamp source. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Create(_ context.Context, app App) (App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app.ID = uuid.New()
	app.CreatedAt = m.now().UTC()
	m.apps[app.ID] = app
	return app, nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return App{}, ErrNotFound
	}
	return app, nil
}

func (m *Memory) List(_ context.Context) ([]App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := make([]App, 0, len(m.apps))
	for _, app := range m.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (m *Memory) Update(_ context.Context, id uuid.UUID, patch Patch) (App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return App{}, ErrNotFound
	}

	if patch.Title != nil {
		app.Title = *patch.Title
	}
	if patch.Description != nil {
		app.Description = *patch.Description
	}
	if patch.PackageName != nil {
		app.PackageName = *patch.PackageName
	}
	if patch.Version != nil {
		app.Version = *patch.Version
	}
	if patch.VersionCode != nil {
		app.VersionCode = *patch.VersionCode
	}
	if patch.BlobKey != nil {
		app.BlobKey = *patch.BlobKey
	}
	if patch.BlobURL != nil {
		app.BlobURL = *patch.BlobURL
	}
	if patch.IconKey != nil {
		key := *patch.IconKey
		app.IconKey = &key
	}
	if patch.IconURL != nil {
		url := *patch.IconURL
		app.IconURL = &url
	}

	m.apps[id] = app
	return app, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.apps[id]; !ok {
		return ErrNotFound
	}
	delete(m.apps, id)
	return nil
}
