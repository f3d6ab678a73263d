package handlers

import (
	"context"

	"pos-storefront-backend/internal/services"
)

// CartServiceInterface defines the contract for cart service
type CartServiceInterface interface {
	GetCart(ctx context.Context, sessionID, lang string) (*services.CartResponse, error)
	AddItem(ctx context.Context, sessionID, lang string, req *services.AddToCartRequest) (*services.CartResponse, error)
	UpdateQuantity(ctx context.Context, sessionID, lang, productID string, quantity int) (*services.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID, lang, productID string) (*services.CartResponse, error)
	Clear(ctx context.Context, sessionID, lang string) (*services.CartResponse, error)
	ItemStatus(ctx context.Context, sessionID, productID string) (*services.CartItemStatus, error)
	MessageLink(ctx context.Context, sessionID, lang string) (*services.MessageLinkResponse, error)
}

// CheckoutServiceInterface defines the contract for checkout service
type CheckoutServiceInterface interface {
	ValidateStep(step string, form services.CheckoutForm) (*services.StepValidation, error)
	PlaceOrder(ctx context.Context, sessionID, lang string, form services.CheckoutForm) (*services.PlaceOrderResult, error)
}
