package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/pkg/messaging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StepContact  = "contact"
	StepShipping = "shipping"
	StepReview   = "review"
)

var checkoutSteps = []string{StepContact, StepShipping, StepReview}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,20}$`)

// ErrUnknownStep is returned for a step name outside contact, shipping and review.
var ErrUnknownStep = errors.New("unknown checkout step")

type CheckoutForm struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`
}

// FieldErrors maps a form field to the rule it failed (required, min, max, email, phone, oneof).
type FieldErrors map[string]string

type StepValidation struct {
	Valid    bool        `json:"valid"`
	Step     string      `json:"step"`
	Errors   FieldErrors `json:"errors,omitempty"`
	NextStep string      `json:"next_step,omitempty"`
}

// ValidationError carries the first checkout step whose fields failed.
type ValidationError struct {
	Step   string
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout step %s has %d invalid field(s)", e.Step, len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// SettingsProvider is satisfied by SettingsService.
type SettingsProvider interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
}

type CheckoutService struct {
	registry  *cart.Registry
	orderRepo repositories.OrderRepository
	settings  SettingsProvider
	publisher EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	registry *cart.Registry,
	orderRepo repositories.OrderRepository,
	settings SettingsProvider,
	publisher EventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		registry:  registry,
		orderRepo: orderRepo,
		settings:  settings,
		publisher: publisher,
		validate:  newCheckoutValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// newCheckoutValidator panics if the custom rules cannot be registered, like
// regexp.MustCompile does for a bad pattern.
func newCheckoutValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("checkout: registering phone rule: %v", err))
	}
	return v
}

// normalizePhone drops the separators people type between digit groups.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

func (f CheckoutForm) normalized() CheckoutForm {
	return CheckoutForm{
		FullName:      strings.TrimSpace(f.FullName),
		Phone:         normalizePhone(f.Phone),
		Email:         strings.TrimSpace(f.Email),
		City:          strings.TrimSpace(f.City),
		Address:       strings.TrimSpace(f.Address),
		Notes:         strings.TrimSpace(f.Notes),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
}

func (s *CheckoutService) check(errs FieldErrors, field, value, tag string) {
	err := s.validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		errs[field] = verrs[0].Tag()
		return
	}
	errs[field] = "invalid"
}

func (s *CheckoutService) validateStep(step string, form CheckoutForm) (FieldErrors, error) {
	errs := FieldErrors{}
	switch step {
	case StepContact:
		s.check(errs, "full_name", form.FullName, "required,min=2,max=100")
		s.check(errs, "phone", form.Phone, "required,phone")
		s.check(errs, "email", form.Email, "omitempty,email")
	case StepShipping:
		s.check(errs, "city", form.City, "required,max=100")
		s.check(errs, "address", form.Address, "required,max=300")
		s.check(errs, "notes", form.Notes, "max=500")
	case StepReview:
		s.check(errs, "payment_method", form.PaymentMethod,
			"required,oneof="+models.PaymentCashOnDelivery+" "+models.PaymentBankTransfer+" "+models.PaymentWhatsApp)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return errs, nil
}

// ValidateStep checks step and every step before it, reporting the first one
// that fails. NextStep is empty once the review step passes.
func (s *CheckoutService) ValidateStep(step string, form CheckoutForm) (*StepValidation, error) {
	form = form.normalized()
	for i, current := range checkoutSteps {
		errs, err := s.validateStep(current, form)
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			return &StepValidation{Valid: false, Step: current, Errors: errs}, nil
		}
		if current == step {
			result := &StepValidation{Valid: true, Step: current}
			if i+1 < len(checkoutSteps) {
				result.NextStep = checkoutSteps[i+1]
			}
			return result, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
}

type PlaceOrderResult struct {
	Order         *models.Order `json:"order"`
	MessagingLink string        `json:"messaging_link,omitempty"`
}

func (s *CheckoutService) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

// PlaceOrder turns the session cart into a pending order. Once the order is
// stored, the ordered lines are taken out of the cart; anything added while the
// order was being written stays for the next checkout.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID, lang string, form CheckoutForm) (*PlaceOrderResult, error) {
	lang = normalizeLang(lang)
	form = form.normalized()
	for _, step := range checkoutSteps {
		errs, err := s.validateStep(step, form)
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			return nil, &ValidationError{Step: step, Fields: errs}
		}
	}

	c, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	snapshot := c.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	items := make(models.OrderItems, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, models.OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			NameEn:    item.Product.NameEn,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: item.Total(),
		})
	}

	shipping := ShippingFeeFor(settings, snapshot.TotalPrice)
	now := s.now()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   s.orderNumber(),
		SessionID:     c.Key(),
		Status:        models.OrderStatusPending,
		CustomerName:  form.FullName,
		CustomerPhone: form.Phone,
		CustomerEmail: form.Email,
		City:          form.City,
		Address:       form.Address,
		Notes:         form.Notes,
		PaymentMethod: form.PaymentMethod,
		Items:         items,
		ItemCount:     snapshot.TotalItems,
		Subtotal:      snapshot.TotalPrice,
		ShippingFee:   shipping,
		Total:         snapshot.TotalPrice.Add(shipping),
		Currency:      settings.Currency,
		Language:      lang,
		StatusLog:     models.JSONB{models.OrderStatusPending: now.UTC().Format(time.RFC3339)},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	s.publishOrderEvent(ctx, messaging.EventOrderPlaced, order)
	c.Subtract(ctx, snapshot.Items)

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", order.ItemCount),
		zap.String("total", order.Total.StringFixed(2)))

	result := &PlaceOrderResult{Order: order}
	if order.PaymentMethod == models.PaymentWhatsApp {
		link, err := OrderMessageLink(settings.WhatsAppNumber, order, lang)
		if err != nil {
			s.logger.Warn("order messaging link unavailable", zap.String("order_number", order.OrderNumber), zap.Error(err))
		} else {
			result.MessagingLink = link
		}
	}
	return result, nil
}

func (s *CheckoutService) publishOrderEvent(ctx context.Context, eventType string, order *models.Order) {
	publishOrderEvent(ctx, s.publisher, s.logger, eventType, order)
}

func publishOrderEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, eventType string, order *models.Order) {
	if publisher == nil {
		return
	}
	event := messaging.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total.StringFixed(2),
		Currency:    order.Currency,
		Customer:    order.CustomerName,
		Phone:       order.CustomerPhone,
	}
	if err := publisher.Publish(ctx, messaging.TopicOrderEvents, event.OrderID, event); err != nil {
		logger.Warn("order event publish failed",
			zap.String("type", eventType), zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}
