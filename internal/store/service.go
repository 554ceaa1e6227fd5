package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/internal/schedule"
	"github.com/amicofritto/orders-backend/pkg/config"
	"github.com/amicofritto/orders-backend/pkg/db/models"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/types"
)

// Profile is the public store snapshot: contact details, delivery pricing,
// and the current ordering gate.
type Profile struct {
	Name             string               `json:"name"`
	Address          *string              `json:"address,omitempty"`
	Phone            *string              `json:"phone,omitempty"`
	OpeningHours     *types.OpeningHours  `json:"opening_hours,omitempty"`
	DeliveryFee      decimal.Decimal      `json:"delivery_fee"`
	MinOrderDelivery decimal.Decimal      `json:"min_order_delivery"`
	IsOpen           bool                 `json:"is_open"`
	NextOpen         string               `json:"next_open,omitempty"`
}

// Gate is the intake decision derived from the store schedule.
type Gate struct {
	IsOpen   bool
	NextOpen string
}

// Service reads the store profile and gates order intake.
type Service interface {
	Profile(ctx context.Context, now time.Time) (*Profile, error)
	Gate(ctx context.Context, now time.Time) (Gate, error)
	DeliveryTerms(ctx context.Context) (fee, minOrder decimal.Decimal, err error)
}

type service struct {
	repo     Repository
	fallback config.StoreConfig
}

// NewService wires store dependencies. cfg provides fallbacks used until
// the settings row is seeded.
func NewService(repo Repository, cfg config.StoreConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store repository required")
	}
	return &service{repo: repo, fallback: cfg}, nil
}

func (s *service) Profile(ctx context.Context, now time.Time) (*Profile, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	fee, minOrder := s.termsFrom(row)
	profile := &Profile{
		Name:             "Amico Fritto",
		DeliveryFee:      fee,
		MinOrderDelivery: minOrder,
	}
	if row != nil {
		profile.Name = row.Name
		profile.Address = row.Address
		profile.Phone = row.Phone
		profile.OpeningHours = row.OpeningHours
	}

	status := schedule.Evaluate(orderScheduleFrom(row), now)
	profile.IsOpen = status.IsOpen
	profile.NextOpen = schedule.FormatNextOpen(status.NextOpen, now)
	return profile, nil
}

func (s *service) Gate(ctx context.Context, now time.Time) (Gate, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return Gate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	status := schedule.Evaluate(orderScheduleFrom(row), now)
	return Gate{
		IsOpen:   status.IsOpen,
		NextOpen: schedule.FormatNextOpen(status.NextOpen, now),
	}, nil
}

func (s *service) DeliveryTerms(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}
	fee, minOrder := s.termsFrom(row)
	return fee, minOrder, nil
}

func (s *service) termsFrom(row *models.StoreSettings) (decimal.Decimal, decimal.Decimal) {
	if row != nil {
		return row.DeliveryFee, row.MinOrderDelivery
	}
	fee, err := decimal.NewFromString(s.fallback.DeliveryFee)
	if err != nil {
		fee = decimal.Zero
	}
	minOrder, err := decimal.NewFromString(s.fallback.MinOrderDelivery)
	if err != nil {
		minOrder = decimal.Zero
	}
	return fee, minOrder
}

func orderScheduleFrom(row *models.StoreSettings) *types.OrderSchedule {
	if row == nil || row.OpeningHours == nil {
		return nil
	}
	if row.OpeningHours.OrderSchedule == nil {
		return nil
	}
	normalized := row.OpeningHours.OrderSchedule.Normalize()
	return &normalized
}
