package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Admin is a publisher credential record. Rows are created by the
// hangarctl bootstrap command; the service only reads them.
type Admin struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialStore looks up admin credentials by login name.
type CredentialStore interface {
	ByUsername(ctx context.Context, username string) (Admin, error)
}

type adminModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (adminModel) TableName() string { return "admins" }

// PostgresStore is the GORM-backed credential store.
type PostgresStore struct {
	orm *gorm.DB
}

// NewPostgresStore wraps the provided GORM handle as a CredentialStore.
func NewPostgresStore(orm *gorm.DB) (*PostgresStore, error) {
	if orm == nil {
		return nil, errors.New("orm is required")
	}
	return &PostgresStore{orm: orm}, nil
}

func (s *PostgresStore) ByUsername(ctx context.Context, username string) (Admin, error) {
	var model adminModel
	err := s.orm.WithContext(ctx).First(&model, "username = ?", username).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Admin{}, ErrInvalidCredentials
	case err != nil:
		return Admin{}, err
	}
	return Admin{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}, nil
}

// Upsert creates the admin row or rotates its password hash if the
// username already exists. Used by the bootstrap CLI.
func (s *PostgresStore) Upsert(ctx context.Context, username, passwordHash string) error {
	model := adminModel{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	return s.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
		}).
		Create(&model).Error
}
