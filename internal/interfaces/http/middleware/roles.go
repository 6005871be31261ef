package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// RequireStaff admits administrators and warehouse staff. It must run after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.Staff {
			abortWithError(c, dto.ErrCodeForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

// RequireAdmin admits only the administrator role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if claims.Role != identity.RoleNameAdmin {
			abortWithError(c, dto.ErrCodeForbidden, "Administrator access required")
			return
		}
		c.Next()
	}
}
