package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/account"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
)

const (
	ContextUserID = "userId"
	ContextRole   = "role"
)

// AuthGuard validates the bearer access token and injects userId and role
// into the context. With allowedRoles set, other roles are rejected.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logging.FromContext(c.Request.Context())
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, err := account.ParseAccessToken(secret, parts[1])
		if err != nil {
			log.Warn("token validation failed", logging.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, claims.Role) {
			log.Warn("role not allowed", slog.Int64(logging.KeyUserID, claims.UserID), slog.String("role", claims.Role))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// SellerAuth admits seller accounts only.
func SellerAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleSeller)
}

// UserID returns the authenticated user id, or 0 outside an AuthGuard.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ContextRole)
}
