package services

import (
	"context"
	"errors"
	"fmt"

	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ProductLookup resolves the current catalog entry for a product id.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type CartService struct {
	registry *cart.Registry
	products ProductLookup
	settings SettingsProvider
}

func NewCartService(registry *cart.Registry, products ProductLookup, settings SettingsProvider) *CartService {
	return &CartService{
		registry: registry,
		products: products,
		settings: settings,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Name      string          `json:"name"`
	NameEn    string          `json:"name_en,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	// Adjusted is set when the requested quantity was reduced to the available stock.
	Adjusted bool `json:"adjusted,omitempty"`
}

type CartItemStatus struct {
	ProductID string `json:"product_id"`
	InCart    bool   `json:"in_cart"`
	Quantity  int    `json:"quantity"`
}

// ToCartProduct captures the price snapshot a line item is frozen at.
func ToCartProduct(p *models.Product) cart.Product {
	image := ""
	if len(p.ImageUrls) > 0 {
		image = p.ImageUrls[0]
	}
	return cart.Product{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		NameEn:   p.NameEn,
		Price:    decimal.NewFromFloat(p.EffectivePrice()).Round(2),
		Stock:    p.Stock,
		ImageURL: image,
	}
}

func NewCartResponse(snapshot cart.Snapshot, lang string) *CartResponse {
	lang = normalizeLang(lang)
	resp := &CartResponse{
		Items:      make([]CartItemResponse, 0, len(snapshot.Items)),
		TotalItems: snapshot.TotalItems,
		TotalPrice: snapshot.TotalPrice,
	}
	for _, item := range snapshot.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: item.Product.ID,
			Title:     item.Product.Title(lang),
			Name:      item.Product.Name,
			NameEn:    item.Product.NameEn,
			ImageURL:  item.Product.ImageURL,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: item.Total(),
			Stock:     item.Product.Stock,
		})
	}
	return resp
}

func (s *CartService) cart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c, nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID, lang string) (*CartResponse, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewCartResponse(c.Snapshot(), lang), nil
}

// Snapshot returns the raw cart state for the session.
func (s *CartService) Snapshot(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// AddItem adds quantity units of a live catalog product, reduced to what is
// left in stock after the units already in the cart.
func (s *CartService) AddItem(ctx context.Context, sessionID, lang string, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, cart.ErrInvalidQuantity)
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	available := product.Stock - c.ItemQuantity(product.ID.Hex())
	if available <= 0 {
		return nil, ErrOutOfStock
	}
	quantity := req.Quantity
	adjusted := false
	if quantity > available {
		quantity = available
		adjusted = true
	}

	if err := c.AddItem(ctx, ToCartProduct(product), quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidProduct) || errors.Is(err, cart.ErrInvalidQuantity) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	resp := NewCartResponse(c.Snapshot(), lang)
	resp.Adjusted = adjusted
	return resp, nil
}

// UpdateQuantity sets the quantity of an existing line, clamped to the stock
// recorded in its snapshot. Zero or less removes the line; unknown ids are a no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, lang, productID string, quantity int) (*CartResponse, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	adjusted := false
	if item, ok := c.Item(productID); ok && quantity > item.Product.Stock {
		quantity = item.Product.Stock
		adjusted = true
	}
	c.UpdateQuantity(ctx, productID, quantity)

	resp := NewCartResponse(c.Snapshot(), lang)
	resp.Adjusted = adjusted
	return resp, nil
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, lang, productID string) (*CartResponse, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(ctx, productID)
	return NewCartResponse(c.Snapshot(), lang), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID, lang string) (*CartResponse, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Clear(ctx)
	return NewCartResponse(c.Snapshot(), lang), nil
}

func (s *CartService) ItemStatus(ctx context.Context, sessionID, productID string) (*CartItemStatus, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &CartItemStatus{
		ProductID: productID,
		InCart:    c.IsInCart(productID),
		Quantity:  c.ItemQuantity(productID),
	}, nil
}

type MessageLinkResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// MessageLink renders the cart as a chat message addressed to the store number.
func (s *CartService) MessageLink(ctx context.Context, sessionID, lang string) (*MessageLinkResponse, error) {
	c, err := s.cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := c.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	message := CartSummary(snapshot, lang, settings.Currency)
	link, err := MessageLink(settings.WhatsAppNumber, message)
	if err != nil {
		return nil, err
	}
	return &MessageLinkResponse{URL: link, Message: message}, nil
}
