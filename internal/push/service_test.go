package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

type fakeRepo struct {
	upserted    []*models.PushToken
	deleted     []string
	pruned      []string
	adminTokens []string
	orderTokens map[string][]string
	pruneErr    error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Upsert(ctx context.Context, token *models.PushToken) error {
	f.upserted = append(f.upserted, token)
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRepo) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	f.pruned = append(f.pruned, tokens...)
	return int64(len(tokens)), nil
}

func (f *fakeRepo) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) DeleteForClosedOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) ListAdminTokens(ctx context.Context) ([]string, error) {
	return f.adminTokens, nil
}

func (f *fakeRepo) ListOrderTokens(ctx context.Context, orderNumber string) ([]string, error) {
	return f.orderTokens[orderNumber], nil
}

type fakeSender struct {
	calls   [][]string
	results []fcm.SendResult
	err     error
}

func (f *fakeSender) Send(ctx context.Context, tokens []string, msg fcm.Message) ([]fcm.SendResult, error) {
	f.calls = append(f.calls, tokens)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "push-test"})
}

func newTestService(t *testing.T, repo *fakeRepo, sender Sender) Service {
	t.Helper()
	svc, err := NewService(repo, sender, testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func TestRegisterCustomerRequiresOrderNumber(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)

	err := svc.Register(context.Background(), enums.PushAudienceCustomer, nil, "tok-1", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatalf("token should not be stored")
	}
}

func TestRegisterAdminDropsOrderScope(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)

	err := svc.Register(context.Background(), enums.PushAudienceAdmin, strPtr("AF000001"), "  tok-admin  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one stored token, got %d", len(repo.upserted))
	}
	row := repo.upserted[0]
	if row.Token != "tok-admin" {
		t.Fatalf("token should be trimmed, got %q", row.Token)
	}
	if row.OrderNumber != nil {
		t.Fatalf("admin tokens must not carry an order scope")
	}
}

func TestNotifyAdminsSendsToAllTokens(t *testing.T) {
	repo := &fakeRepo{adminTokens: []string{"a1", "a2"}}
	sender := &fakeSender{results: []fcm.SendResult{
		{Token: "a1", OK: true, Status: 200},
		{Token: "a2", OK: true, Status: 200},
	}}
	svc := newTestService(t, repo, sender)

	if err := svc.NotifyAdmins(context.Background(), fcm.Message{Title: "Nuovo ordine"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 1 || len(sender.calls[0]) != 2 {
		t.Fatalf("unexpected send calls %v", sender.calls)
	}
}

func TestNotifyOrderPrunesStaleTokens(t *testing.T) {
	repo := &fakeRepo{orderTokens: map[string][]string{
		"AF000007": {"live", "stale"},
	}}
	sender := &fakeSender{results: []fcm.SendResult{
		{Token: "live", OK: true, Status: 200},
		{Token: "stale", Status: 404, Prune: true},
	}}
	svc := newTestService(t, repo, sender)

	if err := svc.NotifyOrder(context.Background(), "AF000007", fcm.Message{Title: "Ordine confermato"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.pruned) != 1 || repo.pruned[0] != "stale" {
		t.Fatalf("expected stale token pruned, got %v", repo.pruned)
	}
}

func TestNotifySkipsWithoutSenderOrTokens(t *testing.T) {
	repo := &fakeRepo{adminTokens: []string{"a1"}}
	svc := newTestService(t, repo, nil)
	if err := svc.NotifyAdmins(context.Background(), fcm.Message{Title: "x"}); err != nil {
		t.Fatalf("nil sender should be a no-op, got %v", err)
	}

	sender := &fakeSender{}
	repo = &fakeRepo{}
	svc = newTestService(t, repo, sender)
	if err := svc.NotifyAdmins(context.Background(), fcm.Message{Title: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("no tokens registered, send should not be called")
	}
}

func TestNotifySurfacesSenderOutage(t *testing.T) {
	repo := &fakeRepo{adminTokens: []string{"a1"}}
	sender := &fakeSender{err: errors.New("token exchange failed")}
	svc := newTestService(t, repo, sender)

	err := svc.NotifyAdmins(context.Background(), fcm.Message{Title: "x"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
