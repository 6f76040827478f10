package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"craftmarket/internal/apperr"
	"craftmarket/internal/checkout"
	"craftmarket/internal/logging"
	"craftmarket/internal/middleware"
)

const requestTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.FromContext(c.Request.Context()).Error("panic recovered",
			slog.String(logging.KeyRoute, route), slog.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *sqlx.DB) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.PingContext(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logging.FromContext(c.Request.Context()).Info("returning error",
		slog.String(logging.KeyRoute, route), slog.Int("status", status), slog.String("message", message))
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondServiceError renders a service error with the status of its kind.
// Errors without a kind are logged and hidden behind a 500.
func respondServiceError(c *gin.Context, route string, err error) {
	var missing checkout.ProductNotFoundError
	if errors.As(err, &missing) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Product with ID " + strconv.FormatInt(missing.ProductID, 10) + " not found.",
			"productId": missing.ProductID,
		})
		return
	}
	status, message := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			slog.String(logging.KeyRoute, route),
			slog.Int64(logging.KeyUserID, middleware.UserID(c)),
			logging.Err(err))
	}
	respondWithError(c, status, route, message)
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, route, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(c, http.StatusBadRequest, route, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bindJSON binds the body into dst, answering 400 with details otherwise.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// Health reports whether the relational store answers.
func Health(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			logging.FromContext(c.Request.Context()).Error("health check failed", logging.Err(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
