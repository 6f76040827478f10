package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/chat"
	"craftmarket/internal/middleware"
)

const streamHeartbeat = 25 * time.Second

func SendMessage(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /chat/messages"
		defer handlePanic(c, route)

		var req chat.SendInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		msg, err := svc.SendMessage(ctx, middleware.UserID(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

func GetMessages(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /chat/conversations/:id/messages"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var afterID int64
		if raw := c.Query("afterId"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 0 {
				respondWithError(c, http.StatusBadRequest, route, "invalid afterId")
				return
			}
			afterID = parsed
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		history, err := svc.GetHistory(ctx, middleware.UserID(c), id, afterID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// StreamMessages pushes new messages of a conversation as server-sent events
// until the client goes away.
func StreamMessages(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /chat/conversations/:id/stream"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		// The stream is bounded by the client connection, not requestTimeout.
		ctx := c.Request.Context()
		messages, unsubscribe, err := svc.Subscribe(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		defer unsubscribe()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case msg, open := <-messages:
				if !open {
					return false
				}
				c.SSEvent("message", msg)
				return true
			case <-heartbeat.C:
				c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
				return true
			}
		})
	}
}

func GetCustomOrderConversation(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /chat/custom-orders/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		thread, err := svc.GetCustomOrderConversation(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, thread)
	}
}

func OpenCustomOrderConversation(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /chat/custom-orders/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		conv, err := svc.GetOrCreateCustomOrderConversation(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}

func OpenOrderConversation(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /chat/orders/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		conv, err := svc.GetOrCreateOrderConversation(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}
