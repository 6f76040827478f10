package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/customorder"
	"craftmarket/internal/middleware"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
)

type CustomOrderStatusRequest struct {
	Status models.CustomOrderStatus `json:"status" binding:"required"`
}

type PriceRequest struct {
	Price   money.Amount `json:"price" binding:"required,gt=0"`
	Message *string      `json:"message"`
}

type AcceptPriceRequest struct {
	NegotiationID int64 `json:"negotiationId" binding:"required,gt=0"`
}

type PaymentNotificationRequest struct {
	TransactionStatus string `json:"transactionStatus" binding:"required"`
	PaymentType       string `json:"paymentType"`
}

type CourierRequestBody struct {
	Address    string    `json:"address" binding:"required"`
	PickupTime time.Time `json:"pickupTime" binding:"required"`
}

type CourierStatusRequest struct {
	Status models.CourierStatus `json:"status" binding:"required"`
}

func CreateCustomOrder(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders"
		defer handlePanic(c, route)

		var req customorder.CreateInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		order, err := svc.Create(ctx, middleware.UserID(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func ListMyCustomOrders(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /custom-orders"
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

func ListSellerCustomOrders(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /seller/custom-orders"
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

func GetCustomOrder(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /custom-orders/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		order, err := svc.GetByID(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateCustomOrderStatus(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /seller/custom-orders/:id/status"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req CustomOrderStatusRequest
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

func ProposePrice(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /seller/custom-orders/:id/propose"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req PriceRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		offer, err := svc.ProposePrice(ctx, middleware.UserID(c), id, req.Price, req.Message)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, offer)
	}
}

func CounterOffer(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders/:id/counter"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req PriceRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		offer, err := svc.CounterOffer(ctx, middleware.UserID(c), id, req.Price, req.Message)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, offer)
	}
}

// AcceptPrice serves both sides; the service checks who may accept which offer.
func AcceptPrice(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders/:id/accept-price"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req AcceptPriceRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		order, err := svc.AcceptPrice(ctx, middleware.UserID(c), id, req.NegotiationID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetNegotiations(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /custom-orders/:id/negotiations"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		offers, err := svc.GetNegotiations(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, offers)
	}
}

func CreateCustomOrderPayment(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders/:id/payment"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		session, err := svc.CreatePayment(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// CustomOrderPaymentNotification takes the result the buyer's client got
// back from the payment popup.
func CustomOrderPaymentNotification(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders/:id/payment/notification"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req PaymentNotificationRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		order, err := svc.HandlePaymentNotification(ctx, middleware.UserID(c), id, req.TransactionStatus, req.PaymentType)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func RequestCourier(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /custom-orders/:id/courier"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req CourierRequestBody
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		courier, err := svc.RequestCourier(ctx, middleware.UserID(c), id, req.Address, req.PickupTime)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, courier)
	}
}

func UpdateCourierStatus(svc *customorder.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /seller/couriers/:id/status"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req CourierStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		courier, err := svc.UpdateCourierStatus(ctx, middleware.UserID(c), id, req.Status)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, courier)
	}
}
