package push

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
)

// Repository exposes persistence helpers for device tokens.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, token *models.PushToken) error
	Delete(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteForClosedOrders(ctx context.Context, cutoff time.Time) (int64, error)
	ListAdminTokens(ctx context.Context) ([]string, error)
	ListOrderTokens(ctx context.Context, orderNumber string) ([]string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a push token repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Upsert refreshes last_seen for a known scope+token pair and inserts the
// row otherwise.
func (r *repositoryImpl) Upsert(ctx context.Context, token *models.PushToken) error {
	var existing models.PushToken
	query := r.db.WithContext(ctx).Where("audience = ? AND token = ?", token.Audience, token.Token)
	if token.OrderNumber != nil {
		query = query.Where("order_number = ?", *token.OrderNumber)
	} else {
		query = query.Where("order_number IS NULL")
	}

	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		token.LastSeen = time.Now().UTC()
		return r.db.WithContext(ctx).Create(token).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]any{"last_seen": time.Now().UTC()}
	if token.UserAgent != nil {
		updates["user_agent"] = *token.UserAgent
	}
	return r.db.WithContext(ctx).
		Model(&models.PushToken{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error {
	query := r.db.WithContext(ctx).Where("audience = ? AND token = ?", audience, token)
	if orderNumber != nil {
		query = query.Where("order_number = ?", *orderNumber)
	} else {
		query = query.Where("order_number IS NULL")
	}
	return query.Delete(&models.PushToken{}).Error
}

// DeleteTokens removes the tokens everywhere they appear, regardless of
// audience. Used when FCM reports them unregistered.
func (r *repositoryImpl) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&models.PushToken{})
	return result.RowsAffected, result.Error
}

// DeleteSeenBefore drops tokens that have not checked in since cutoff. A
// browser that stopped polling months ago will never receive a push anyway.
func (r *repositoryImpl) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("last_seen < ?", cutoff).Delete(&models.PushToken{})
	return result.RowsAffected, result.Error
}

// DeleteForClosedOrders removes order-scoped tokens once the order has been
// completed or cancelled for longer than cutoff allows. The tracking page
// has nothing left to announce at that point.
func (r *repositoryImpl) DeleteForClosedOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	closed := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_number").
		Where("status IN ? AND updated_at < ?", []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusCancelled}, cutoff)
	result := r.db.WithContext(ctx).
		Where("order_number IS NOT NULL AND order_number IN (?)", closed).
		Delete(&models.PushToken{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListAdminTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&models.PushToken{}).
		Where("audience = ?", enums.PushAudienceAdmin).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *repositoryImpl) ListOrderTokens(ctx context.Context, orderNumber string) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&models.PushToken{}).
		Where("audience = ? AND order_number = ?", enums.PushAudienceCustomer, orderNumber).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
