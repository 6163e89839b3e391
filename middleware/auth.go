package middleware

import (
	"net/http"
	"strings"

	"wellvix/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys populated by JWTAuthMiddleware.
const (
	ContextSubjectKey = "authSubject"
	ContextRoleKey    = "authRole"
)

// Roles carried in tokens.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// JWTAuthMiddleware validates the bearer token and, when roles are
// given, requires one of them. Admin tokens pass every role gate.
func JWTAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		subject, role, err := utils.ExtractClaims(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			zap.L().Warn("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if len(roles) > 0 && role != RoleAdmin {
			allowed := false
			for _, r := range roles {
				if role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
				return
			}
		}

		c.Set(ContextSubjectKey, subject)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// AuthSubject returns the authenticated subject id set by the middleware.
func AuthSubject(c *gin.Context) string {
	return c.GetString(ContextSubjectKey)
}

// AuthRole returns the authenticated role set by the middleware.
func AuthRole(c *gin.Context) string {
	return c.GetString(ContextRoleKey)
}
