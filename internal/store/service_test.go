package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/pkg/config"
	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/types"
)

type fakeRepo struct {
	row *models.StoreSettings
	err error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Get(ctx context.Context) (*models.StoreSettings, error) {
	return f.row, f.err
}

func (f *fakeRepo) Update(ctx context.Context, settings *models.StoreSettings) error {
	f.row = settings
	return nil
}

func fallbackConfig() config.StoreConfig {
	return config.StoreConfig{DeliveryFee: "2.50", MinOrderDelivery: "15.00"}
}

// Monday 2025-06-02 in local time.
func monday(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.Local)
}

func TestProfileFallsBackWithoutSettingsRow(t *testing.T) {
	svc, err := NewService(&fakeRepo{}, fallbackConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	profile, err := svc.Profile(context.Background(), monday(12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "Amico Fritto" {
		t.Fatalf("unexpected name %q", profile.Name)
	}
	if !profile.DeliveryFee.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("unexpected delivery fee %s", profile.DeliveryFee)
	}
	if !profile.MinOrderDelivery.Equal(decimal.NewFromFloat(15)) {
		t.Fatalf("unexpected min order %s", profile.MinOrderDelivery)
	}
	// No schedule configured means the store accepts orders.
	if !profile.IsOpen {
		t.Fatalf("missing schedule should leave intake open")
	}
}

func TestGateUsesConfiguredSchedule(t *testing.T) {
	sched := types.EmptyOrderSchedule()
	sched.Enabled = true
	sched.Days[types.DayMon] = []types.TimeRange{{Start: "18:00", End: "23:00"}}

	repo := &fakeRepo{row: &models.StoreSettings{
		Name:             "Amico Fritto",
		OpeningHours:     &types.OpeningHours{OrderSchedule: &sched},
		DeliveryFee:      decimal.NewFromFloat(3),
		MinOrderDelivery: decimal.NewFromFloat(20),
	}}
	svc, _ := NewService(repo, fallbackConfig())

	gate, err := svc.Gate(context.Background(), monday(15, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gate.IsOpen {
		t.Fatalf("expected closed before opening window")
	}
	if gate.NextOpen != "18:00" {
		t.Fatalf("unexpected next open %q", gate.NextOpen)
	}

	gate, err = svc.Gate(context.Background(), monday(19, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gate.IsOpen {
		t.Fatalf("expected open inside window")
	}
}

func TestDeliveryTermsPreferSettingsRow(t *testing.T) {
	repo := &fakeRepo{row: &models.StoreSettings{
		Name:             "Amico Fritto",
		DeliveryFee:      decimal.NewFromFloat(3.5),
		MinOrderDelivery: decimal.NewFromFloat(25),
	}}
	svc, _ := NewService(repo, fallbackConfig())

	fee, minOrder, err := svc.DeliveryTerms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fee.Equal(decimal.NewFromFloat(3.5)) || !minOrder.Equal(decimal.NewFromFloat(25)) {
		t.Fatalf("unexpected terms %s / %s", fee, minOrder)
	}
}

func TestProfileLegacyDisplayString(t *testing.T) {
	display := "Lun-Dom 18:00-23:00"
	repo := &fakeRepo{row: &models.StoreSettings{
		Name:             "Amico Fritto",
		OpeningHours:     &types.OpeningHours{Display: &display},
		DeliveryFee:      decimal.NewFromFloat(2.5),
		MinOrderDelivery: decimal.NewFromFloat(15),
	}}
	svc, _ := NewService(repo, fallbackConfig())

	profile, err := svc.Profile(context.Background(), monday(3, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A display-only value carries no machine schedule, so intake stays open.
	if !profile.IsOpen {
		t.Fatalf("legacy display-only hours should not gate intake")
	}
}
