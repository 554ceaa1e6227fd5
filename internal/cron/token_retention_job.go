package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/metrics"
)

const (
	defaultTokenRetention = 60 * 24 * time.Hour
	closedOrderGrace      = 24 * time.Hour
)

// tokenStore is the push repository surface the job uses.
type tokenStore interface {
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteForClosedOrders(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenRetentionJob struct {
	logg      *logger.Logger
	repo      tokenStore
	metrics   *metrics.OrderMetrics
	retention time.Duration
	now       func() time.Time
}

// NewTokenRetentionJob prunes push tokens that can no longer receive
// anything useful: devices not seen within the retention window and
// order-scoped tokens whose order closed more than a day ago.
func NewTokenRetentionJob(logg *logger.Logger, repo tokenStore, m *metrics.OrderMetrics, retention time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if repo == nil {
		return nil, fmt.Errorf("push repository required")
	}
	if retention <= 0 {
		retention = defaultTokenRetention
	}
	return &tokenRetentionJob{
		logg:      logg,
		repo:      repo,
		metrics:   m,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (j *tokenRetentionJob) Name() string { return "push-token-retention" }

func (j *tokenRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	stale, err := j.repo.DeleteSeenBefore(ctx, now.Add(-j.retention))
	if err != nil {
		return fmt.Errorf("delete stale tokens: %w", err)
	}

	closed, err := j.repo.DeleteForClosedOrders(ctx, now.Add(-closedOrderGrace))
	if err != nil {
		return fmt.Errorf("delete closed-order tokens: %w", err)
	}

	removed := stale + closed
	j.metrics.IncTokensPruned(int(removed))
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stale_removed":  stale,
		"closed_removed": closed,
		"retention":      j.retention.String(),
	})
	j.logg.Info(logCtx, "push token retention complete")
	return nil
}
