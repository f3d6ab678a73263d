package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = auth.RoleAdmin

type AuthService struct {
	userRepo   repositories.AdminUserRepository
	jwtManager *auth.JWTManager
	cache      Cache
	logger     *zap.Logger
}

func NewAuthService(userRepo repositories.AdminUserRepository, jwtManager *auth.JWTManager, cache Cache, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		cache:      cache,
		logger:     logger,
	}
}

func refreshTokenKey(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

// Refresh token storage methods
func (s *AuthService) storeRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return s.cache.Set(ctx, refreshTokenKey(userID), refreshToken, s.jwtManager.RefreshTTL())
}

func (s *AuthService) getStoredRefreshToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.cache.Get(ctx, refreshTokenKey(userID), &token)
	return token, err
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"` // seconds until access token expires
	User         models.AdminUser `json:"user"`
}

// EnsureAdmin seeds the first back-office account when none exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if email == "" || password == "" {
		s.logger.Warn("no admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are not set")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Administrator"
	}
	user := &models.AdminUser{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seeded admin account", zap.String("email", user.Email))
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(user.ID.String(), user.Role, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID.String(), tokenPair.RefreshToken); err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("recording admin login failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return &AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtManager.AccessTTL().Seconds()),
		User:         *user,
	}, nil
}

// RefreshAccessToken validates refresh token and generates new access token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	accessToken, claims, err := s.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// Check if refresh token exists in storage
	storedToken, err := s.getStoredRefreshToken(ctx, claims.UserID)
	if err != nil || storedToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtManager.AccessTTL().Seconds()),
		User:         *user,
	}, nil
}

// Logout invalidates the refresh token
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, refreshTokenKey(userID))
}
