package additions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/db/models"
)

// Repository exposes persistence helpers for additions and category rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.Addition, error)
	GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Addition, error)
	GetActiveRuleByCategory(ctx context.Context, categoryID uuid.UUID) (*models.AdditionCategoryRule, error)
	UpsertRule(ctx context.Context, rule *models.AdditionCategoryRule) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an additions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.Addition, error) {
	var rows []models.Addition
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Addition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Addition
	err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) GetActiveRuleByCategory(ctx context.Context, categoryID uuid.UUID) (*models.AdditionCategoryRule, error) {
	var rule models.AdditionCategoryRule
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND active = ?", categoryID, true).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repositoryImpl) UpsertRule(ctx context.Context, rule *models.AdditionCategoryRule) error {
	existing := models.AdditionCategoryRule{}
	err := r.db.WithContext(ctx).
		Where("category_id = ?", rule.CategoryID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(rule).Error
	}
	if err != nil {
		return err
	}

	rule.ID = existing.ID
	return r.db.WithContext(ctx).
		Model(&models.AdditionCategoryRule{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"sauce_mode":  rule.SauceMode,
			"max_sauces":  rule.MaxSauces,
			"sauce_price": rule.SaucePrice,
			"active":      rule.Active,
		}).Error
}
