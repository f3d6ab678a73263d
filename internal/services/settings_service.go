package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	settingsCacheKey = "settings:site"
	settingsCacheTTL = time.Hour
)

type SettingsService struct {
	repo     repositories.SettingsRepository
	cache    Cache
	defaults models.SiteSettings
	logger   *zap.Logger
}

// NewSettingsService returns a service that falls back to the default
// currency until an admin saves the first settings row.
func NewSettingsService(repo repositories.SettingsRepository, cache Cache, currency string, logger *zap.Logger) *SettingsService {
	if currency == "" {
		currency = "SAR"
	}
	return &SettingsService{
		repo:  repo,
		cache: cache,
		defaults: models.SiteSettings{
			StoreName:   "متجرنا",
			StoreNameEn: "Our Store",
			Currency:    strings.ToUpper(currency),
		},
		logger: logger,
	}
}

type UpdateSettingsRequest struct {
	StoreName             *string          `json:"store_name,omitempty"`
	StoreNameEn           *string          `json:"store_name_en,omitempty"`
	WhatsAppNumber        *string          `json:"whatsapp_number,omitempty"`
	ContactPhone          *string          `json:"contact_phone,omitempty"`
	ContactEmail          *string          `json:"contact_email,omitempty"`
	Currency              *string          `json:"currency,omitempty"`
	ShippingFee           *decimal.Decimal `json:"shipping_fee,omitempty"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold,omitempty"`
	AnnouncementAr        *string          `json:"announcement_ar,omitempty"`
	AnnouncementEn        *string          `json:"announcement_en,omitempty"`
}

func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	var cached models.SiteSettings
	if s.cache != nil {
		if err := s.cache.Get(ctx, settingsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		defaults := s.defaults
		settings = &defaults
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, settings, settingsCacheTTL); err != nil {
			s.logger.Debug("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, req *UpdateSettingsRequest) (*models.SiteSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		defaults := s.defaults
		settings = &defaults
	}

	if req.StoreName != nil {
		settings.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.StoreNameEn != nil {
		settings.StoreNameEn = strings.TrimSpace(*req.StoreNameEn)
	}
	if req.WhatsAppNumber != nil {
		number := strings.TrimSpace(*req.WhatsAppNumber)
		if number != "" && messagingDigits(number) == "" {
			return nil, fmt.Errorf("%w: whatsapp number must contain digits", ErrInvalidInput)
		}
		settings.WhatsAppNumber = number
	}
	if req.ContactPhone != nil {
		settings.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.ContactEmail != nil {
		settings.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, fmt.Errorf("%w: currency must be a 3 letter code", ErrInvalidInput)
		}
		settings.Currency = currency
	}
	if req.ShippingFee != nil {
		if req.ShippingFee.IsNegative() {
			return nil, fmt.Errorf("%w: shipping fee must not be negative", ErrInvalidInput)
		}
		settings.ShippingFee = *req.ShippingFee
	}
	if req.FreeShippingThreshold != nil {
		if req.FreeShippingThreshold.IsNegative() {
			return nil, fmt.Errorf("%w: free shipping threshold must not be negative", ErrInvalidInput)
		}
		settings.FreeShippingThreshold = *req.FreeShippingThreshold
	}
	if req.AnnouncementAr != nil {
		settings.AnnouncementAr = *req.AnnouncementAr
	}
	if req.AnnouncementEn != nil {
		settings.AnnouncementEn = *req.AnnouncementEn
	}
	settings.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	return settings, nil
}

// ShippingFeeFor is zero once the subtotal reaches a positive free-shipping threshold.
func ShippingFeeFor(settings *models.SiteSettings, subtotal decimal.Decimal) decimal.Decimal {
	if settings.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(settings.FreeShippingThreshold) {
		return decimal.Zero
	}
	return settings.ShippingFee
}
