package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

type fakePendingStore struct {
	pending   []models.Order
	cancelled []uuid.UUID
	updateErr map[uuid.UUID]error
}

func (f *fakePendingStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.pending {
		if order.CreatedAt.Before(cutoff) {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakePendingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeOrderNotifier struct {
	notified []string
	messages []fcm.Message
}

func (f *fakeOrderNotifier) NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error {
	f.notified = append(f.notified, orderNumber)
	f.messages = append(f.messages, msg)
	return nil
}

func pendingOrder(number string, age time.Duration, now time.Time) models.Order {
	return models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Status:      enums.OrderStatusPending,
		CreatedAt:   now.Add(-age),
	}
}

func TestOrderExpiryCancelsOnlyStaleOrders(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	stale := pendingOrder("AF000010", 30*time.Hour, now)
	fresh := pendingOrder("AF000011", time.Hour, now)
	store := &fakePendingStore{pending: []models.Order{stale, fresh}}
	notifier := &fakeOrderNotifier{}

	job, err := NewOrderExpiryJob(logg, store, notifier, nil, 24*time.Hour)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*orderExpiryJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(store.cancelled) != 1 || store.cancelled[0] != stale.ID {
		t.Fatalf("expected only the stale order cancelled, got %v", store.cancelled)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != "AF000010" {
		t.Fatalf("expected cancellation push for AF000010, got %v", notifier.notified)
	}
	if notifier.messages[0].Title != "Ordine annullato" {
		t.Fatalf("unexpected notification title %q", notifier.messages[0].Title)
	}
}

func TestOrderExpiryContinuesPastFailures(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	broken := pendingOrder("AF000020", 48*time.Hour, now)
	ok := pendingOrder("AF000021", 48*time.Hour, now)
	store := &fakePendingStore{
		pending:   []models.Order{broken, ok},
		updateErr: map[uuid.UUID]error{broken.ID: context.DeadlineExceeded},
	}

	job, err := NewOrderExpiryJob(logg, store, nil, nil, 24*time.Hour)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*orderExpiryJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(store.cancelled) != 1 || store.cancelled[0] != ok.ID {
		t.Fatalf("expected the healthy order cancelled despite the failure, got %v", store.cancelled)
	}
}
