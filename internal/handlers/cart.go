package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/checkout"
	"craftmarket/internal/middleware"
	"craftmarket/internal/models"
)

type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CreateOrdersRequest struct {
	Items []checkout.LineInput `json:"items" binding:"required,min=1,dive"`
}

type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending completed cancelled"`
}

func GetCart(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		items, err := svc.GetCart(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func AddToCart(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		var req checkout.LineInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		row, err := svc.AddToCart(ctx, middleware.UserID(c), req.ProductID, req.Quantity)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": row.ID, "productId": row.ProductID, "quantity": row.Quantity})
	}
}

func UpdateCartItem(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req QuantityRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		row, err := svc.UpdateCartItem(ctx, middleware.UserID(c), id, req.Quantity)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": row.ID, "productId": row.ProductID, "quantity": row.Quantity})
	}
}

func RemoveCartItem(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := svc.RemoveCartItem(ctx, middleware.UserID(c), id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func ClearCart(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		n, err := svc.ClearCart(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "removed": n})
	}
}

func CreateOrders(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req CreateOrdersRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		orders, err := svc.CreateOrders(ctx, middleware.UserID(c), req.Items)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, orders)
	}
}

func Checkout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/checkout"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		orders, err := svc.Checkout(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, orders)
	}
}

func ListMyOrders(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		orders, err := svc.GetForUser(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func ListSellerOrders(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /seller/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		orders, err := svc.GetForSeller(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func UpdateOrderStatus(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /seller/orders/:id/status"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req OrderStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		order, err := svc.UpdateStatus(ctx, middleware.UserID(c), id, req.Status)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func CreateOrderSnapToken(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/orders/:id/snap-token"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		session, err := svc.CreateSnapToken(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}
