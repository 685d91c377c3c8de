package artifact

import (
	"fmt"

	"hangar/internal/catalog"
)

// ValidationError reports missing or malformed input. It is always
// returned before any store has been touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Upload is an in-memory file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) validate(field string) error {
	if u == nil {
		return invalid(field, "file is required")
	}
	if len(u.Data) == 0 {
		return invalid(field, "file is empty")
	}
	if u.Filename == "" {
		return invalid(field, "filename is required")
	}
	return nil
}

// PublishInput carries everything needed to publish a new app.
type PublishInput struct {
	Title       string
	Description string
	PackageName string
	Version     string
	VersionCode int64
	Package     *Upload
	Icon        *Upload
}

func (in *PublishInput) validate() error {
	if in.PackageName == "" {
		return invalid("package_name", "required")
	}
	if in.Description == "" {
		return invalid("description", "required")
	}
	if err := in.Package.validate("file"); err != nil {
		return err
	}
	if in.Icon != nil {
		if err := in.Icon.validate("icon"); err != nil {
			return err
		}
	}
	return nil
}

// Patch carries the metadata fields a replace may override. Nil fields
// keep their stored values.
type Patch struct {
	Title       *string
	Description *string
	PackageName *string
	Version     *string
	VersionCode *int64
}

func (p Patch) toCatalog() catalog.Patch {
	return catalog.Patch{
		Title:       p.Title,
		Description: p.Description,
		PackageName: p.PackageName,
		Version:     p.Version,
		VersionCode: p.VersionCode,
	}
}

func (p Patch) validate() error {
	if p.PackageName != nil && *p.PackageName == "" {
		return invalid("package_name", "must not be empty")
	}
	if p.Description != nil && *p.Description == "" {
		return invalid("description", "must not be empty")
	}
	return nil
}

// ReplaceInput carries a metadata patch plus optional new binaries.
type ReplaceInput struct {
	Patch   Patch
	Package *Upload
	Icon    *Upload
}

func (in *ReplaceInput) validate() error {
	if err := in.Patch.validate(); err != nil {
		return err
	}
	if in.Package != nil {
		if err := in.Package.validate("file"); err != nil {
			return err
		}
	}
	if in.Icon != nil {
		if err := in.Icon.validate("icon"); err != nil {
			return err
		}
	}
	return nil
}
