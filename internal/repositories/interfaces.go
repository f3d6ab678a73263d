package repositories

import (
	"context"
	"errors"
	"time"

	"pos-storefront-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every repository when the record does not exist.
var ErrNotFound = errors.New("record not found")

// AdminUserRepository interface for PostgreSQL back-office accounts
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Update(ctx context.Context, user *models.AdminUser) error
	Count(ctx context.Context) (int64, error)
}

type OrderFilter struct {
	Status string
	Query  string
	// Sort is one of newest, oldest, total_desc, total_asc.
	Sort   string
	Limit  int
	Offset int
}

// OrderRepository interface for PostgreSQL order operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
}

// SettingsRepository interface for the single site settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

type ProductFilter struct {
	CategoryID   *primitive.ObjectID
	Query        string
	FeaturedOnly bool
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// ProductRepository interface for MongoDB product operations
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// CategoryRepository interface for MongoDB category operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
}
