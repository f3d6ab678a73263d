package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// RoleAdmin is the only back-office role; every admin route requires it.
const RoleAdmin = "admin"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

type JWTManager struct {
	secretKey         string
	accessExpiryHours int
	refreshExpiryDays int
	now               func() time.Time
}

type Claims struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewJWTManager(secretKey string, accessExpiryHours, refreshExpiryDays int) *JWTManager {
	return &JWTManager{
		secretKey:         secretKey,
		accessExpiryHours: accessExpiryHours,
		refreshExpiryDays: refreshExpiryDays,
		now:               time.Now,
	}
}

// AccessTTL is the lifetime of access tokens.
func (j *JWTManager) AccessTTL() time.Duration {
	return time.Hour * time.Duration(j.accessExpiryHours)
}

// RefreshTTL is the lifetime of refresh tokens.
func (j *JWTManager) RefreshTTL() time.Duration {
	return time.Hour * 24 * time.Duration(j.refreshExpiryDays)
}

func (j *JWTManager) generateToken(userID, role, email string, tokenType TokenType) (string, error) {
	now := j.now()
	expiryTime := now.Add(j.AccessTTL())
	if tokenType == RefreshToken {
		expiryTime = now.Add(j.RefreshTTL())
	}

	claims := &Claims{
		UserID:    userID,
		Role:      role,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiryTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *JWTManager) GenerateTokenPair(userID, role, email string) (*TokenPair, error) {
	accessToken, err := j.generateToken(userID, role, email, AccessToken)
	if err != nil {
		return nil, err
	}

	refreshToken, err := j.generateToken(userID, role, email, RefreshToken)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateAccessToken rejects refresh tokens presented as bearer credentials.
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != AccessToken {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func (j *JWTManager) RefreshAccessToken(refreshTokenString string) (string, *Claims, error) {
	claims, err := j.ValidateToken(refreshTokenString)
	if err != nil {
		return "", nil, err
	}

	if claims.TokenType != RefreshToken {
		return "", nil, ErrInvalidTokenType
	}

	token, err := j.generateToken(claims.UserID, claims.Role, claims.Email, AccessToken)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}
