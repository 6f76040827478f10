// Package server wires the HTTP routes onto the services.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"craftmarket/internal/account"
	"craftmarket/internal/catalog"
	"craftmarket/internal/chat"
	"craftmarket/internal/checkout"
	"craftmarket/internal/customorder"
	"craftmarket/internal/handlers"
	"craftmarket/internal/middleware"
	"craftmarket/internal/notify"
	"craftmarket/internal/payment"
	"craftmarket/internal/storage"
)

type Deps struct {
	DB            *sqlx.DB
	JWTSecret     string
	WebhookSecret string
	Limiter       middleware.Limiter
	StaticDir     string
	StaticPath    string

	Accounts      *account.Service
	Catalog       *catalog.Service
	Checkout      *checkout.Service
	CustomOrders  *customorder.Service
	Chat          *chat.Service
	Notifications *notify.Service
	Archive       payment.Archive
	Objects       storage.ObjectStore
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter, middleware.ClientKey))
	}
	if d.StaticDir != "" {
		r.Static(d.StaticPath, d.StaticDir)
	}

	r.GET("/health", handlers.Health(d.DB))

	r.POST("/auth/register", handlers.Register(d.Accounts))
	r.POST("/auth/login", handlers.Login(d.Accounts))
	r.POST("/auth/refresh", handlers.Refresh(d.Accounts))
	r.POST("/auth/logout", handlers.Logout(d.Accounts))
	r.GET("/auth/me", middleware.UserAuth(d.JWTSecret), handlers.Me(d.Accounts))

	r.GET("/products", handlers.ListProducts(d.Catalog))
	r.GET("/products/:id", handlers.GetProduct(d.Catalog))
	r.GET("/portfolio/seller/:sellerId", handlers.ListSellerPortfolio(d.Catalog))
	r.GET("/search", handlers.Search(d.Catalog))
	r.GET("/skills", handlers.ListSkills(d.Catalog))

	archive := d.Archive
	if archive == nil {
		archive = payment.NopArchive{}
	}
	r.POST("/payment/webhook", handlers.PaymentWebhook(handlers.WebhookDeps{
		Secret:       d.WebhookSecret,
		Archive:      archive,
		CustomOrders: d.CustomOrders,
		Orders:       d.Checkout,
	}))

	user := r.Group("/")
	user.Use(middleware.UserAuth(d.JWTSecret))
	{
		user.GET("/profile", handlers.GetProfile(d.Accounts))
		user.PUT("/profile", handlers.UpdateProfile(d.Accounts))
		user.POST("/profile/skills", handlers.AddSkill(d.Accounts))

		user.GET("/cart", handlers.GetCart(d.Checkout))
		user.POST("/cart", handlers.AddToCart(d.Checkout))
		user.PUT("/cart/:id", handlers.UpdateCartItem(d.Checkout))
		user.DELETE("/cart/:id", handlers.RemoveCartItem(d.Checkout))
		user.DELETE("/cart", handlers.ClearCart(d.Checkout))

		user.GET("/orders", handlers.ListMyOrders(d.Checkout))
		user.POST("/orders", handlers.CreateOrders(d.Checkout))
		user.POST("/orders/checkout", handlers.Checkout(d.Checkout))
		user.POST("/payments/orders/:id/snap-token", handlers.CreateOrderSnapToken(d.Checkout))

		user.GET("/custom-orders", handlers.ListMyCustomOrders(d.CustomOrders))
		user.POST("/custom-orders", handlers.CreateCustomOrder(d.CustomOrders))
		user.GET("/custom-orders/:id", handlers.GetCustomOrder(d.CustomOrders))
		user.GET("/custom-orders/:id/negotiations", handlers.GetNegotiations(d.CustomOrders))
		user.POST("/custom-orders/:id/counter", handlers.CounterOffer(d.CustomOrders))
		user.POST("/custom-orders/:id/accept-price", handlers.AcceptPrice(d.CustomOrders))
		user.POST("/custom-orders/:id/payment", handlers.CreateCustomOrderPayment(d.CustomOrders))
		user.POST("/custom-orders/:id/payment/notification", handlers.CustomOrderPaymentNotification(d.CustomOrders))
		user.POST("/custom-orders/:id/courier", handlers.RequestCourier(d.CustomOrders))

		user.POST("/chat/messages", handlers.SendMessage(d.Chat))
		user.GET("/chat/conversations/:id/messages", handlers.GetMessages(d.Chat))
		user.GET("/chat/conversations/:id/stream", handlers.StreamMessages(d.Chat))
		user.GET("/chat/custom-orders/:id", handlers.GetCustomOrderConversation(d.Chat))
		user.POST("/chat/custom-orders/:id", handlers.OpenCustomOrderConversation(d.Chat))
		user.POST("/chat/orders/:id", handlers.OpenOrderConversation(d.Chat))

		user.GET("/notifications", handlers.ListNotifications(d.Notifications))
		user.GET("/notifications/unread-count", handlers.UnreadNotificationCount(d.Notifications))
		user.POST("/notifications/:id/read", handlers.MarkNotificationRead(d.Notifications))
		user.POST("/notifications/read-all", handlers.MarkAllNotificationsRead(d.Notifications))

		if d.Objects != nil {
			user.POST("/upload/image", handlers.UploadImage(d.Objects, time.Now))
		}
	}

	seller := r.Group("/seller")
	seller.Use(middleware.SellerAuth(d.JWTSecret))
	{
		seller.GET("/products", handlers.ListOwnProducts(d.Catalog))
		seller.POST("/products", handlers.CreateProduct(d.Catalog))
		seller.PUT("/products/:id", handlers.UpdateProduct(d.Catalog))
		seller.DELETE("/products/:id", handlers.DeleteProduct(d.Catalog))

		seller.GET("/portfolio", handlers.ListOwnPortfolio(d.Catalog))
		seller.POST("/portfolio", handlers.CreatePortfolio(d.Catalog))
		seller.PUT("/portfolio/:id", handlers.UpdatePortfolio(d.Catalog))
		seller.DELETE("/portfolio/:id", handlers.DeletePortfolio(d.Catalog))
		seller.POST("/portfolio/:id/featured", handlers.ToggleFeatured(d.Catalog))

		seller.GET("/orders", handlers.ListSellerOrders(d.Checkout))
		seller.PUT("/orders/:id/status", handlers.UpdateOrderStatus(d.Checkout))

		seller.GET("/custom-orders", handlers.ListSellerCustomOrders(d.CustomOrders))
		seller.PUT("/custom-orders/:id/status", handlers.UpdateCustomOrderStatus(d.CustomOrders))
		seller.POST("/custom-orders/:id/propose", handlers.ProposePrice(d.CustomOrders))
		seller.PUT("/couriers/:id/status", handlers.UpdateCourierStatus(d.CustomOrders))
	}

	return r
}
