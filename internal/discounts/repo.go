package discounts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/db/models"
)

// Repository exposes persistence helpers for discount codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetActiveByCode(ctx context.Context, code string) (*models.DiscountCode, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a discounts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetActiveByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var row models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", strings.ToUpper(strings.TrimSpace(code)), true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
