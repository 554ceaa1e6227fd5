package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amicofritto/orders-backend/internal/orders"
	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/metrics"
)

const defaultPendingTTL = 24 * time.Hour

// pendingOrderStore is the orders repository surface the job uses.
type pendingOrderStore interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type orderNotifier interface {
	NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error
}

type orderExpiryJob struct {
	logg     *logger.Logger
	repo     pendingOrderStore
	notifier orderNotifier
	metrics  *metrics.OrderMetrics
	ttl      time.Duration
	now      func() time.Time
}

// NewOrderExpiryJob cancels orders the staff never confirmed. A pending
// order older than the TTL was either missed or abandoned; the customer is
// told it was cancelled instead of being left waiting forever.
func NewOrderExpiryJob(logg *logger.Logger, repo pendingOrderStore, notifier orderNotifier, m *metrics.OrderMetrics, ttl time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &orderExpiryJob{
		logg:     logg,
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)

	stale, err := j.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	cancelled := 0
	for _, order := range stale {
		if err := j.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			j.logg.Error(j.logg.WithOrderNumber(ctx, order.OrderNumber), "auto-cancel failed", err)
			continue
		}
		cancelled++
		j.metrics.IncStatusChange(enums.OrderStatusCancelled.String())
		j.notify(ctx, order.OrderNumber)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"cancelled": cancelled,
	})
	j.logg.Info(logCtx, "stale pending orders cancelled")
	return nil
}

func (j *orderExpiryJob) notify(ctx context.Context, orderNumber string) {
	if j.notifier == nil {
		return
	}
	msg, ok := orders.StatusNotification(enums.OrderStatusCancelled, orderNumber)
	if !ok {
		return
	}
	if err := j.notifier.NotifyOrder(ctx, orderNumber, msg); err != nil {
		j.logg.Warn(j.logg.WithOrderNumber(ctx, orderNumber), "auto-cancel notification failed")
	}
}
