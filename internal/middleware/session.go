package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"

	cartSessionMaxAge = 365 * 24 * 60 * 60
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// CartSession resolves the browsing session a cart belongs to. The header
// wins over the cookie; a missing or malformed id is replaced with a new one,
// which is echoed back in both the header and the cookie.
func CartSession(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(CartSessionHeader)
		if sessionID == "" {
			if cookie, err := c.Cookie(CartSessionCookie); err == nil {
				sessionID = cookie
			}
		}
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = uuid.NewString()
		}

		c.Set("cart_session", sessionID)
		c.Header(CartSessionHeader, sessionID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, sessionID, cartSessionMaxAge, "/", "", secureCookie, true)
		c.Next()
	}
}

// GetCartSession returns the session id set by CartSession.
func GetCartSession(c *gin.Context) string {
	return c.GetString("cart_session")
}
