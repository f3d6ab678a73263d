package middleware

import (
	"net/http"
	"strings"

	"pos-storefront-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

const adminClaimsKey = "admin_claims"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortAuth(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": title, "message": message})
}

// AuthRequired accepts back-office access tokens only. Refresh tokens and
// tokens without a subject are rejected.
func (a *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, http.StatusUnauthorized, "Unauthorized", "Authorization header required")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "Unauthorized", "Expected a Bearer token")
			return
		}

		claims, err := a.jwtManager.ValidateAccessToken(token)
		if err != nil || claims.UserID == "" {
			abortAuth(c, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}

// RoleRequired must run after AuthRequired.
func (a *AuthMiddleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		abortAuth(c, http.StatusForbidden, "Forbidden", "Insufficient permissions")
	}
}

func (a *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return a.RoleRequired(auth.RoleAdmin)
}

// Claims returns the token claims stored by AuthRequired.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(adminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// GetUserID is the authenticated admin id, or "" on public routes.
func GetUserID(c *gin.Context) string {
	if claims, ok := Claims(c); ok {
		return claims.UserID
	}
	return ""
}

func GetUserRole(c *gin.Context) string {
	if claims, ok := Claims(c); ok {
		return claims.Role
	}
	return ""
}
