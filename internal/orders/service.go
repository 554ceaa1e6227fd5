package orders

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amicofritto/orders-backend/api/validators"
	"github.com/amicofritto/orders-backend/internal/additions"
	"github.com/amicofritto/orders-backend/internal/discounts"
	"github.com/amicofritto/orders-backend/internal/pricing"
	"github.com/amicofritto/orders-backend/internal/store"
	"github.com/amicofritto/orders-backend/pkg/captcha"
	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/metrics"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ]{5,18}$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type captchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token string) (captcha.Result, error)
}

type notifier interface {
	NotifyAdmins(ctx context.Context, msg fcm.Message) error
	NotifyOrder(ctx context.Context, orderNumber string, msg fcm.Message) error
}

// Service runs order intake, lookups, and staff status transitions.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	tx           txRunner
	repo         Repository
	additionsSvc additions.Service
	discountSvc  discounts.Service
	storeSvc     store.Service
	verifier     captchaVerifier
	notifier     notifier
	logg         *logger.Logger
	metrics      *metrics.OrderMetrics
	now          func() time.Time
}

// NewService wires order dependencies. verifier, notifier, and m may be nil.
func NewService(
	tx txRunner,
	repo Repository,
	additionsSvc additions.Service,
	discountSvc discounts.Service,
	storeSvc store.Service,
	verifier captchaVerifier,
	notifier notifier,
	logg *logger.Logger,
	m *metrics.OrderMetrics,
) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if additionsSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "additions service required")
	}
	if discountSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "discounts service required")
	}
	if storeSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		tx:           tx,
		repo:         repo,
		additionsSvc: additionsSvc,
		discountSvc:  discountSvc,
		storeSvc:     storeSvc,
		verifier:     verifier,
		notifier:     notifier,
		logg:         logg,
		metrics:      m,
		now:          time.Now,
	}, nil
}

// Create runs the intake pipeline: captcha, schedule gate, contact and cart
// validation, pricing, then a transactional insert with the next order
// number. The admin notification is fired after commit and never affects
// the response.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	now := s.now()

	if err := s.checkCaptcha(ctx, input.CaptchaToken); err != nil {
		s.metrics.IncRejected("captcha")
		return nil, err
	}

	gate, err := s.storeSvc.Gate(ctx, now)
	if err != nil {
		return nil, err
	}
	if !gate.IsOpen {
		s.metrics.IncRejected("store_closed")
		message := "Siamo chiusi."
		if gate.NextOpen != "" {
			message = fmt.Sprintf("Siamo chiusi. Riapriamo %s", gate.NextOpen)
		}
		return nil, pkgerrors.New(pkgerrors.CodeStoreClosed, message).
			WithDetails(map[string]any{"next_open": gate.NextOpen})
	}

	order, err := s.buildOrder(ctx, input, now)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			s.metrics.IncRejected("validation")
		}
		return nil, err
	}

	if err := s.insertWithNumber(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.IncCreated(order.OrderType.String())

	s.notifyNewOrder(ctx, order)
	return order, nil
}

func (s *service) checkCaptcha(ctx context.Context, token string) error {
	if s.verifier == nil || !s.verifier.Enabled() {
		return nil
	}
	result, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return err
	}
	if !result.Success {
		return pkgerrors.New(pkgerrors.CodeValidation, "Verifica di sicurezza fallita. Riprova.")
	}
	return nil
}

func (s *service) buildOrder(ctx context.Context, input CreateOrderInput, now time.Time) (*models.Order, error) {
	orderType, err := enums.ParseOrderType(input.OrderType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Tipo di ordine non valido")
	}

	name := validators.SanitizeString(input.CustomerName, validators.MaxNameLen)
	phone := validators.SanitizeString(input.CustomerPhone, validators.MaxPhoneLen)
	address := validators.SanitizeOptional(input.CustomerAddress, validators.MaxAddressLen)
	notes := validators.SanitizeOptional(input.Notes, validators.MaxNotesLen)

	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nome mancante")
	}
	if !phonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Numero di telefono non valido")
	}

	var paymentMethod *enums.PaymentMethod
	if orderType == enums.OrderTypeDelivery {
		if address == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Indirizzo di consegna mancante")
		}
		if input.PaymentMethod != nil {
			parsed, err := enums.ParsePaymentMethod(*input.PaymentMethod)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "Metodo di pagamento non valido")
			}
			paymentMethod = &parsed
		}
	} else {
		// Payment method is recorded for deliveries only.
		address = nil
	}

	items, lines, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Compute(pricing.Params{Lines: lines, OrderType: orderType})
	if err != nil {
		return nil, err
	}

	fee, minOrder, err := s.storeSvc.DeliveryTerms(ctx)
	if err != nil {
		return nil, err
	}
	if orderType == enums.OrderTypeDelivery && quote.Subtotal.LessThan(minOrder) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("Ordine minimo per la consegna: €%s", minOrder.StringFixed(2)))
	}

	var discountCode *string
	discountAmount := quote.DiscountAmount
	if input.DiscountCode != nil && *input.DiscountCode != "" {
		// An invalid code never blocks checkout; the order simply proceeds
		// without a discount.
		outcome, err := s.discountSvc.Verify(ctx, *input.DiscountCode, quote.Subtotal, now)
		if err != nil {
			return nil, err
		}
		if outcome.Valid {
			discountCode = &outcome.Code
			discountAmount = outcome.Amount
		}
	}

	quote, err = pricing.Compute(pricing.Params{
		Lines:          lines,
		OrderType:      orderType,
		DeliveryFee:    fee,
		DiscountAmount: discountAmount,
	})
	if err != nil {
		return nil, err
	}

	return &models.Order{
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: address,
		OrderType:       orderType,
		PaymentMethod:   paymentMethod,
		Items:           items,
		Subtotal:        quote.Subtotal,
		DiscountCode:    discountCode,
		DiscountAmount:  quote.DiscountAmount,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
		Status:          enums.OrderStatusPending,
		Notes:           notes,
	}, nil
}

func (s *service) buildItems(ctx context.Context, inputs []CreateOrderItemInput) ([]models.OrderItem, []pricing.Line, error) {
	if len(inputs) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Il carrello è vuoto")
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetAvailableProducts(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]models.OrderItem, 0, len(inputs))
	lines := make([]pricing.Line, 0, len(inputs))
	for _, input := range inputs {
		product, ok := byID[input.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Un prodotto nel carrello non è più disponibile")
		}

		categorySlug := ""
		if product.Category != nil {
			categorySlug = product.Category.Slug
		}
		rule, err := s.additionsSvc.ResolveRule(ctx, product.CategoryID, categorySlug)
		if err != nil {
			return nil, nil, err
		}
		selection, err := s.additionsSvc.ValidateSelection(ctx, rule, input.AdditionIDs)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, models.OrderItem{
			ProductID:          product.ID,
			Name:               product.Name,
			Price:              product.Price,
			Quantity:           input.Quantity,
			Additions:          selection.Label,
			AdditionsUnitPrice: selection.UnitPrice,
			AdditionsIDs:       selection.IDs,
		})
		lines = append(lines, pricing.Line{
			UnitPrice:          product.Price,
			AdditionsUnitPrice: selection.UnitPrice,
			Quantity:           input.Quantity,
		})
	}
	return items, lines, nil
}

// insertWithNumber assigns the next order number and persists inside one
// transaction. A duplicate-number conflict from a concurrent insert is
// retried once with a freshly read sequence.
func (s *service) insertWithNumber(ctx context.Context, order *models.Order) error {
	attempt := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			last, err := repo.LastOrderNumber(ctx)
			if err != nil {
				return err
			}
			order.ID = uuid.Nil
			order.OrderNumber = NextOrderNumber(last)
			return repo.Create(ctx, order)
		})
	}

	err := attempt()
	if pkgerrors.IsUniqueViolation(err, "orders_order_number_key") {
		s.logg.Warn(ctx, "order number conflict, retrying")
		err = attempt()
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return nil
}

func (s *service) notifyNewOrder(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	msg := fcm.Message{
		Title:       "Nuovo ordine",
		Body:        fmt.Sprintf("Ordine %s • €%s", order.OrderNumber, order.Total.StringFixed(2)),
		ClickAction: "/admin/dashboard/orders",
		Data:        map[string]string{"order_number": order.OrderNumber},
	}
	background := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.NotifyAdmins(background, msg); err != nil {
			s.logg.Error(background, "notify admins of new order", err)
		}
	}()
}

// GetByNumber looks an order up by its customer-facing number, forgiving
// case, '#', and missing zero padding.
func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	normalized := NormalizeOrderNumber(orderNumber)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Numero ordine mancante")
	}
	order, err := s.repo.GetByNumber(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Ordine non trovato")
	}
	return order, nil
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// UpdateStatus applies a staff transition and fires the matching customer
// notification. Persistence failures abort before any notification;
// notification failures never surface.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Identificativo ordine mancante")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Stato non valido")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Ordine non trovato")
	}
	if !CanTransition(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("Transizione non consentita da %s a %s", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	s.metrics.IncStatusChange(status.String())

	if s.notifier != nil {
		if msg, ok := StatusNotification(status, order.OrderNumber); ok {
			background := context.WithoutCancel(ctx)
			number := order.OrderNumber
			go func() {
				if err := s.notifier.NotifyOrder(background, number, msg); err != nil {
					s.logg.Error(background, "notify customer of status change", err)
				}
			}()
		}
	}
	return order, nil
}
