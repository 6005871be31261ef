package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func issueTokens(t *testing.T, svc *auth.JWTService, role string) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "cliente@laforneria.cl",
		Role:   role,
		Staff:  identity.IsStaffRole(role),
	})
	require.NoError(t, err)
	return pair, userID
}

type failingBlacklist struct{ auth.TokenBlacklist }

func (failingBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingBlacklist) IsUserRevoked(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func authRouter(cfg AuthConfig, optional bool) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	if optional {
		router.Use(OptionalAuth(cfg))
	} else {
		router.Use(Auth(cfg))
	}
	router.GET("/me", func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": ok,
			"user_id":       id.String(),
			"staff":         IsStaff(c),
			"ctx_user":      logger.GetUserID(c.Request.Context()),
		})
	})
	return router
}

func callMe(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := issueTokens(t, svc, identity.RoleNameWarehouse)

	t.Run("valid token exposes the caller", func(t *testing.T) {
		w := callMe(authRouter(AuthConfig{JWTService: svc}, false), BearerPrefix+pair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
		assert.Contains(t, w.Body.String(), `"staff":true`)
		assert.Contains(t, w.Body.String(), `"ctx_user":"`+userID.String()+`"`)
	})

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", "INVALID_TOKEN"},
		{"empty bearer", BearerPrefix, "INVALID_TOKEN"},
		{"garbage token", BearerPrefix + "not-a-jwt", "INVALID_TOKEN"},
		{"refresh token used as access", BearerPrefix + pair.RefreshToken, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := callMe(authRouter(AuthConfig{JWTService: svc}, false), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.Contains(t, w.Body.String(), "request_id")
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired := newTestJWTService(-time.Minute)
		old, _ := issueTokens(t, expired, identity.RoleNameCustomer)

		w := callMe(authRouter(AuthConfig{JWTService: svc}, false), BearerPrefix+old.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("revoked jti", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, bl.Revoke(context.Background(), claims.ID, time.Minute))

		w := callMe(authRouter(AuthConfig{JWTService: svc, Blacklist: bl}, false), BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	})

	t.Run("all user tokens invalidated", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.RevokeUser(context.Background(), userID.String(), time.Hour))

		w := callMe(authRouter(AuthConfig{JWTService: svc, Blacklist: bl}, false), BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	})

	t.Run("blacklist outage fails open", func(t *testing.T) {
		w := callMe(authRouter(AuthConfig{JWTService: svc, Blacklist: failingBlacklist{}}, false), BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issueTokens(t, svc, identity.RoleNameCustomer)
	router := authRouter(AuthConfig{JWTService: svc}, true)

	w := callMe(router, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = callMe(router, BearerPrefix+"broken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = callMe(router, BearerPrefix+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"staff":false`)
}

func TestGetJWTClaims_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	_, ok := CurrentUserID(c)
	assert.False(t, ok)
	assert.False(t, IsStaff(c))
}
