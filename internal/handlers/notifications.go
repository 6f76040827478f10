package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/middleware"
	"craftmarket/internal/notify"
)

func ListNotifications(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /notifications"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		list, err := svc.GetForUser(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func UnreadNotificationCount(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /notifications/unread-count"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		n, err := svc.UnreadCount(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

func MarkNotificationRead(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /notifications/:id/read"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := svc.MarkAsRead(ctx, middleware.UserID(c), id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func MarkAllNotificationsRead(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /notifications/read-all"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		n, err := svc.MarkAllAsRead(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
	}
}
