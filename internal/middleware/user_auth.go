package middleware

import "github.com/gin-gonic/gin"

// UserAuth admits any signed-in account; sellers act as buyers too.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}
