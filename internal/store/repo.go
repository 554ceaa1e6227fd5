package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/db/models"
)

// Repository exposes persistence helpers for the store profile.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.StoreSettings, error)
	Update(ctx context.Context, settings *models.StoreSettings) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a store repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Get returns the single settings row, or nil when it has not been seeded.
func (r *repositoryImpl) Get(ctx context.Context) (*models.StoreSettings, error) {
	var row models.StoreSettings
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Update(ctx context.Context, settings *models.StoreSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
