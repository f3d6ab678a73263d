package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/pkg/messaging"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const productCacheTTL = 30 * time.Minute

func productCacheKey(id string) string {
	return "product:" + id
}

type ProductService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cache        Cache
	publisher    EventPublisher
	logger       *zap.Logger
}

func NewProductService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	cache Cache,
	publisher EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		publisher:    publisher,
		logger:       logger,
	}
}

type CreateProductRequest struct {
	SKU           string            `json:"sku"`
	Name          string            `json:"name" binding:"required"`
	NameEn        string            `json:"name_en"`
	Description   string            `json:"description"`
	DescriptionEn string            `json:"description_en"`
	CategoryID    string            `json:"category_id"`
	Price         float64           `json:"price" binding:"gte=0"`
	DiscountPrice *float64          `json:"discount_price,omitempty"`
	Stock         int               `json:"stock" binding:"gte=0"`
	ImageUrls     []string          `json:"image_urls"`
	Specs         map[string]string `json:"specs,omitempty"`
	IsActive      *bool             `json:"is_active,omitempty"`
	IsFeatured    bool              `json:"is_featured"`
}

type UpdateProductRequest struct {
	SKU           *string           `json:"sku,omitempty"`
	Name          *string           `json:"name,omitempty"`
	NameEn        *string           `json:"name_en,omitempty"`
	Description   *string           `json:"description,omitempty"`
	DescriptionEn *string           `json:"description_en,omitempty"`
	CategoryID    *string           `json:"category_id,omitempty"`
	Price         *float64          `json:"price,omitempty"`
	DiscountPrice *float64          `json:"discount_price,omitempty"`
	ClearDiscount bool              `json:"clear_discount,omitempty"`
	Stock         *int              `json:"stock,omitempty"`
	ImageUrls     []string          `json:"image_urls,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	IsActive      *bool             `json:"is_active,omitempty"`
	IsFeatured    *bool             `json:"is_featured,omitempty"`
}

type ProductQuery struct {
	CategoryID      string
	Query           string
	FeaturedOnly    bool
	IncludeInactive bool
	Limit           int
	Offset          int
}

type ProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func parseObjectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, id string) (primitive.ObjectID, error) {
	if strings.TrimSpace(id) == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := parseObjectID(id, ErrCategoryNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return primitive.NilObjectID, ErrCategoryNotFound
		}
		return primitive.NilObjectID, err
	}
	return oid, nil
}

func validatePrices(price float64, discount *float64) error {
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if discount != nil && (*discount < 0 || *discount > price) {
		return fmt.Errorf("%w: discount price must be between 0 and price", ErrInvalidInput)
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if err := validatePrices(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := &models.Product{
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		NameEn:        strings.TrimSpace(req.NameEn),
		Description:   req.Description,
		DescriptionEn: req.DescriptionEn,
		CategoryID:    categoryID,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		ImageUrls:     req.ImageUrls,
		Specs:         req.Specs,
		IsActive:      isActive,
		IsFeatured:    req.IsFeatured,
	}
	if product.ImageUrls == nil {
		product.ImageUrls = []string{}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishCatalogEvent(ctx, messaging.EventProductCreated, product)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	oid, err := parseObjectID(id, ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		product.Name = name
	}
	if req.NameEn != nil {
		product.NameEn = strings.TrimSpace(*req.NameEn)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.DescriptionEn != nil {
		product.DescriptionEn = *req.DescriptionEn
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ClearDiscount {
		product.DiscountPrice = nil
	} else if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if err := validatePrices(product.Price, product.DiscountPrice); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
		}
		product.Stock = *req.Stock
	}
	if req.ImageUrls != nil {
		product.ImageUrls = req.ImageUrls
	}
	if req.Specs != nil {
		product.Specs = req.Specs
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.invalidateProduct(ctx, product.ID.Hex())
	s.publishCatalogEvent(ctx, messaging.EventProductUpdated, product)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, ErrProductNotFound)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.invalidateProduct(ctx, id)
	s.publishCatalogEvent(ctx, messaging.EventProductDeleted, &models.Product{ID: oid})
	return nil
}

// GetProduct reads through the product cache.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseObjectID(id, ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	var cached models.Product
	if s.cache != nil {
		if err := s.cache.Get(ctx, productCacheKey(oid.Hex()), &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productCacheKey(oid.Hex()), product, productCacheTTL); err != nil {
			s.logger.Debug("product cache write failed", zap.String("product_id", oid.Hex()), zap.Error(err))
		}
	}
	return product, nil
}

// GetActiveProduct is GetProduct restricted to what the storefront may show.
func (s *ProductService) GetActiveProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, q ProductQuery) (*ProductList, error) {
	limit, offset := clampPage(q.Limit, q.Offset)
	filter := repositories.ProductFilter{
		Query:        strings.TrimSpace(q.Query),
		FeaturedOnly: q.FeaturedOnly,
		ActiveOnly:   !q.IncludeInactive,
		Limit:        limit,
		Offset:       offset,
	}
	if q.CategoryID != "" {
		oid, err := parseObjectID(q.CategoryID, ErrCategoryNotFound)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &oid
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductList{Products: products, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *ProductService) invalidateProduct(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

func (s *ProductService) publishCatalogEvent(ctx context.Context, eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := messaging.CatalogEvent{
		Type:      eventType,
		ProductID: product.ID.Hex(),
		SKU:       product.SKU,
		Stock:     product.Stock,
	}
	if err := s.publisher.Publish(ctx, messaging.TopicCatalogEvents, event.ProductID, event); err != nil {
		s.logger.Warn("catalog event publish failed",
			zap.String("type", eventType), zap.String("product_id", event.ProductID), zap.Error(err))
	}
}

// Category Service
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, productRepo repositories.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	NameEn    string `json:"name_en"`
	Slug      string `json:"slug"`
	ImageURL  string `json:"image_url"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *CategoryService) apply(category *models.Category, req *CategoryRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	category.Name = name
	category.NameEn = strings.TrimSpace(req.NameEn)
	category.Slug = slugify(req.Slug)
	if category.Slug == "" {
		category.Slug = slugify(category.NameEn)
	}
	category.ImageURL = req.ImageURL
	category.SortOrder = req.SortOrder
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	return nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	category := &models.Category{IsActive: true}
	if err := s.apply(category, req); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req *CategoryRequest) (*models.Category, error) {
	oid, err := parseObjectID(id, ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.apply(category, req); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, ErrCategoryNotFound)
	if err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategory(ctx, oid)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.categoryRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	return s.categoryRepo.List(ctx, !includeInactive)
}
