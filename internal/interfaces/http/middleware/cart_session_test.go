package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSession(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	cfg := config.CartConfig{CookieName: "cart_session", TTL: 24 * time.Hour, CookieSecure: true}

	router := gin.New()
	router.Use(OptionalAuth(AuthConfig{JWTService: svc}), CartSession(cfg))
	router.GET("/cart", func(c *gin.Context) {
		c.String(http.StatusOK, GetCartSessionKey(c))
	})

	get := func(cookie *http.Cookie, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		if bearer != "" {
			req.Header.Set(AuthHeaderKey, BearerPrefix+bearer)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("issues an anonymous cookie", func(t *testing.T) {
		w := get(nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "anon:"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "cart_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, 86400, cookies[0].MaxAge)
		assert.Equal(t, "anon:"+cookies[0].Value, w.Body.String())
	})

	t.Run("reuses an existing cookie", func(t *testing.T) {
		id := uuid.NewString()
		w := get(&http.Cookie{Name: "cart_session", Value: id}, "")
		assert.Equal(t, "anon:"+id, w.Body.String())
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		w := get(&http.Cookie{Name: "cart_session", Value: "../../etc"}, "")
		assert.NotEqual(t, "anon:../../etc", w.Body.String())
		assert.True(t, strings.HasPrefix(w.Body.String(), "anon:"))
	})

	t.Run("authenticated users are keyed by user id", func(t *testing.T) {
		pair, userID := issueTokens(t, svc, identity.RoleNameCustomer)
		w := get(&http.Cookie{Name: "cart_session", Value: uuid.NewString()}, pair.AccessToken)
		assert.Equal(t, "user:"+userID.String(), w.Body.String())
		assert.Empty(t, w.Result().Cookies())
	})
}
