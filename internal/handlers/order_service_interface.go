package handlers

import (
	"context"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/services"
)

// OrderServiceInterface defines the back-office order operations
type OrderServiceInterface interface {
	ListOrders(ctx context.Context, q services.OrderQuery) (*services.OrderList, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// SettingsServiceInterface defines the site settings operations
type SettingsServiceInterface interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Update(ctx context.Context, req *services.UpdateSettingsRequest) (*models.SiteSettings, error)
}

// ReportServiceInterface defines the dashboard report
type ReportServiceInterface interface {
	Dashboard(ctx context.Context, from, to time.Time) (*services.DashboardReport, error)
}
