package handlers

import (
	"context"

	"pos-storefront-backend/internal/services"
)

// AuthServiceInterface defines the interface for auth service operations
type AuthServiceInterface interface {
	Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
}
