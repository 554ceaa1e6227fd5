package push

import (
	"context"
	"strings"

	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/metrics"
)

const maxTokenLen = 4096

// Sender delivers a notification to a batch of device tokens.
type Sender interface {
	Send(ctx context.Context, tokens []string, msg fcm.Message) ([]fcm.SendResult, error)
}

// Service registers device tokens and fans notifications out to them.
// A nil sender disables delivery while keeping registration working.
type Service interface {
	Register(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string, userAgent *string) error
	Unregister(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error
	NotifyAdmins(ctx context.Context, msg fcm.Message) error
	NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error
}

type service struct {
	repo    Repository
	sender  Sender
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

// NewService wires push dependencies. sender and m may be nil.
func NewService(repo Repository, sender Sender, logg *logger.Logger, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "push repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, sender: sender, logg: logg, metrics: m}, nil
}

func (s *service) Register(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string, userAgent *string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxTokenLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "Token non valido")
	}
	if !audience.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Destinatario non valido")
	}
	if audience == enums.PushAudienceCustomer && (orderNumber == nil || *orderNumber == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "Numero ordine mancante")
	}
	if audience == enums.PushAudienceAdmin {
		orderNumber = nil
	}

	row := &models.PushToken{
		Token:       token,
		Audience:    audience,
		OrderNumber: orderNumber,
		UserAgent:   userAgent,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save push token")
	}
	return nil
}

func (s *service) Unregister(ctx context.Context, audience enums.PushAudience, orderNumber *string, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Token non valido")
	}
	if !audience.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Destinatario non valido")
	}
	if err := s.repo.Delete(ctx, audience, orderNumber, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete push token")
	}
	return nil
}

// NotifyAdmins sends the message to every registered admin device.
func (s *service) NotifyAdmins(ctx context.Context, msg fcm.Message) error {
	tokens, err := s.repo.ListAdminTokens(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admin tokens")
	}
	return s.deliver(ctx, tokens, msg)
}

// NotifyOrder sends the message to the devices registered for one order.
func (s *service) NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error {
	tokens, err := s.repo.ListOrderTokens(ctx, orderNumber)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order tokens")
	}
	return s.deliver(ctx, tokens, msg)
}

func (s *service) deliver(ctx context.Context, tokens []string, msg fcm.Message) error {
	if s.sender == nil || len(tokens) == 0 {
		return nil
	}
	ctx = s.logg.WithComponent(ctx, "push")

	results, err := s.sender.Send(ctx, tokens, msg)
	if err != nil {
		s.metrics.IncPushSent("error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send notifications")
	}

	var stale []string
	for _, res := range results {
		switch {
		case res.OK:
			s.metrics.IncPushSent("ok")
		case res.Prune:
			s.metrics.IncPushSent("pruned")
			stale = append(stale, res.Token)
		default:
			s.metrics.IncPushSent("error")
			s.logg.Warn(s.logg.WithField(ctx, "status", res.Status), "push delivery failed")
		}
	}

	if len(stale) > 0 {
		removed, err := s.repo.DeleteTokens(ctx, stale)
		if err != nil {
			s.logg.Error(ctx, "prune stale push tokens", err)
		} else {
			s.metrics.IncTokensPruned(int(removed))
			s.logg.Info(s.logg.WithField(ctx, "count", removed), "pruned stale push tokens")
		}
	}
	return nil
}
