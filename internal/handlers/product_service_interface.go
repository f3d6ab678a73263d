package handlers

import (
	"context"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/services"
)

// ProductServiceInterface defines the contract for product service
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, req *services.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req *services.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetActiveProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, q services.ProductQuery) (*services.ProductList, error)
}

// CategoryServiceInterface defines the contract for category service
type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, req *services.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, req *services.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
}
