package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	PackageName string    `gorm:"type:text;not null;index"`
	Version     string    `gorm:"type:text"`
	VersionCode int64     `gorm:"type:bigint"`
	BlobKey     string    `gorm:"type:text;not null"`
	BlobURL     string    `gorm:"type:text;not null"`
	IconKey     *string   `gorm:"type:text"`
	IconURL     *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (appModel) TableName() string { return "apps" }

func (m appModel) toAPI() App {
	return App{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		PackageName: m.PackageName,
		Version:     m.Version,
		VersionCode: m.VersionCode,
		BlobKey:     m.BlobKey,
		BlobURL:     m.BlobURL,
		IconKey:     m.IconKey,
		IconURL:     m.IconURL,
		CreatedAt:   m.CreatedAt,
	}
}

// Postgres is the GORM-backed catalog used in production.
type Postgres struct {
	orm *gorm.DB
}

// NewPostgres wraps the provided GORM handle as a Catalog.
func NewPostgres(orm *gorm.DB) (*Postgres, error) {
	if orm == nil {
		return nil, errors.New("orm is required")
	}
	return &Postgres{orm: orm}, nil
}

func (p *Postgres) Create(ctx context.Context, app App) (App, error) {
	model := appModel{
		ID:          uuid.New(),
		Title:       app.Title,
		Description: app.Description,
		PackageName: app.PackageName,
		Version:     app.Version,
		VersionCode: app.VersionCode,
		BlobKey:     app.BlobKey,
		BlobURL:     app.BlobURL,
		IconKey:     app.IconKey,
		IconURL:     app.IconURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.orm.WithContext(ctx).Create(&model).Error; err != nil {
		return App{}, faultf("create", err)
	}
	return model.toAPI(), nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (App, error) {
	var model appModel
	err := p.orm.WithContext(ctx).First(&model, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return App{}, ErrNotFound
	case err != nil:
		return App{}, faultf("get", err)
	}
	return model.toAPI(), nil
}

func (p *Postgres) List(ctx context.Context) ([]App, error) {
	var models []appModel
	if err := p.orm.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, faultf("list", err)
	}
	apps := make([]App, 0, len(models))
	for _, m := range models {
		apps = append(apps, m.toAPI())
	}
	return apps, nil
}

func (p *Postgres) Update(ctx context.Context, id uuid.UUID, patch Patch) (App, error) {
	orm := p.orm.WithContext(ctx)

	var model appModel
	err := orm.First(&model, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return App{}, ErrNotFound
	case err != nil:
		return App{}, faultf("update", err)
	}

	updates := patch.columns()
	if len(updates) > 0 {
		if err := orm.Model(&model).Updates(updates).Error; err != nil {
			return App{}, faultf("update", err)
		}
		if err := orm.First(&model, "id = ?", id).Error; err != nil {
			return App{}, faultf("update", err)
		}
	}
	return model.toAPI(), nil
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res := p.orm.WithContext(ctx).Delete(&appModel{}, "id = ?", id)
	if res.Error != nil {
		return faultf("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// columns maps the set fields of a patch to GORM column updates.
func (p Patch) columns() map[string]any {
	updates := map[string]any{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.PackageName != nil {
		updates["package_name"] = *p.PackageName
	}
	if p.Version != nil {
		updates["version"] = *p.Version
	}
	if p.VersionCode != nil {
		updates["version_code"] = *p.VersionCode
	}
	if p.BlobKey != nil {
		updates["blob_key"] = *p.BlobKey
	}
	if p.BlobURL != nil {
		updates["blob_url"] = *p.BlobURL
	}
	if p.IconKey != nil {
		updates["icon_key"] = *p.IconKey
	}
	if p.IconURL != nil {
		updates["icon_url"] = *p.IconURL
	}
	return updates
}
