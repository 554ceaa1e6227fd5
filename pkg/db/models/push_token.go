package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amicofritto/orders-backend/pkg/enums"
)

// PushToken is a registered device token. Customer tokens are scoped to an
// order number; admin tokens are not scoped at all.
type PushToken struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token       string             `gorm:"column:token;not null;uniqueIndex:push_tokens_scope_key,priority:3"`
	Audience    enums.PushAudience `gorm:"column:audience;type:text;not null;uniqueIndex:push_tokens_scope_key,priority:1"`
	OrderNumber *string            `gorm:"column:order_number;uniqueIndex:push_tokens_scope_key,priority:2"`
	UserAgent   *string            `gorm:"column:user_agent"`
	LastSeen    time.Time          `gorm:"column:last_seen;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
