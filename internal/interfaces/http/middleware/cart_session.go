package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/infrastructure/config"
)

// CartSessionKey is where CartSession stores the resolved cart key
const CartSessionKey = "cart_session_key"

// CartSession resolves the cart key of the request. Authenticated users get
// their user key; anonymous callers get a uuid cookie issued on first visit.
// It must run after OptionalAuth or Auth.
func CartSession(cfg config.CartConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL.Seconds())
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = ""
		}

		if claims := GetJWTClaims(c); claims != nil {
			c.Set(CartSessionKey, cart.KeyForUser(claims.UserID))
			c.Next()
			return
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		// Refresh on every visit so the cookie outlives activity like the stored cart does
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sessionID, maxAge, "/", "", cfg.CookieSecure, true)
		c.Set(CartSessionKey, cart.KeyForSession(sessionID))
		c.Next()
	}
}

// GetCartSessionKey returns the key resolved by CartSession
func GetCartSessionKey(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
