package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	sessions   repository.SessionRepository
	httpServer *http.Server
	logger     *logging.Logger
}

func New(h *handlers.Handlers, sessions repository.SessionRepository, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		sessions: sessions,
		logger:   logging.New("server"),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// No write timeout: the cart badge stream stays open.
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	return s
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/live", h.Live)
	s.router.GET("/metrics", h.Metrics)
	s.router.GET("/version", h.Version)

	api := s.router.Group("/api")
	api.Use(middleware.Session(s.sessions, s.config.Session))
	{
		cart := api.Group("/cart")
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.PATCH("/items/:itemId", h.UpdateCartItem)
		cart.DELETE("/items/:itemId", h.DeleteCartItem)
		cart.GET("/count", h.CartCount)
		cart.GET("/count/stream", h.CartCountStream)

		checkout := api.Group("/checkout")
		checkout.POST("", h.StartCheckout)
		checkout.GET("", h.GetCheckout)
		checkout.POST("/contact", h.SubmitContact)
		checkout.GET("/address", h.EnterAddress)
		checkout.POST("/address/select", h.SelectCheckoutAddress)
		checkout.POST("/back", h.CheckoutBack)
		checkout.POST("/submit", h.SubmitOrder)

		payment := api.Group("/payment/:orderId")
		payment.GET("", h.GetPayment)
		payment.POST("/pay", h.PayNow)
		payment.POST("/later", h.PayLater)
		payment.POST("/shipping-address", h.SetShippingAddress)

		orders := api.Group("/orders")
		orders.GET("", h.ListOrders)
		orders.POST("/:orderId/cancel", h.RequestCancel)
		orders.POST("/:orderId/cancel/confirm", h.ConfirmCancel)

		catalog := api.Group("/catalog")
		catalog.GET("/products", h.ListProducts)
		catalog.GET("/search", h.SearchProducts)
		catalog.GET("/tires", h.ListTires)
		catalog.GET("/tires/filters", h.TireFilters)
		catalog.GET("/rims", h.ListRims)
		catalog.GET("/rims/filters", h.RimFilters)
		catalog.GET("/accessories", h.ListAccessories)
		catalog.GET("/accessories/filters", h.AccessoryFilters)
		catalog.GET("/product/:category/:id", h.GetProduct)
		catalog.POST("/product/:category/:id/cart", h.AddToCart)

		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/state", h.AuthState)

		account := api.Group("/account")
		account.GET("/profile", h.GetProfile)
		account.PATCH("/profile", h.UpdateProfile)
		account.PATCH("/password", h.ChangePassword)
		account.DELETE("/personal-data", h.DeletePersonalData)
		account.DELETE("", h.DeleteAccount)
		account.GET("/addresses", h.ListAddresses)
		account.POST("/addresses", h.CreateAddress)
		account.GET("/addresses/:id", h.GetAddress)
		account.PATCH("/addresses/:id", h.UpdateAddress)
		account.DELETE("/addresses/:id", h.DeleteAddress)

		if s.config.Features.EnableAdmin {
			s.setupAdminRoutes(api.Group("/admin", middleware.RequireRole(models.RoleAdmin)))
		}
	}
}

func (s *Server) setupAdminRoutes(admin *gin.RouterGroup) {
	h := s.handlers

	admin.POST("/products/:category", h.CreateProducts)
	admin.PATCH("/products/:category/:id", h.UpdateProduct)
	admin.DELETE("/products/:category/:id", h.DeleteProduct)

	admin.GET("/orders", h.AdminListOrders)
	admin.GET("/orders/:id", h.AdminGetOrder)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	admin.GET("/users", h.AdminListUsers)
	admin.GET("/users/:id", h.AdminGetUser)
	admin.DELETE("/users/:id", h.AdminDeleteUser)
	admin.POST("/users/:id/roles/:roleId", h.AddRole)
	admin.DELETE("/users/:id/roles/:roleId", h.RemoveRole)

	admin.GET("/images", h.AdminListImages)
	admin.POST("/images", h.CreateImage)
	admin.GET("/images/:id", h.AdminGetImage)
	admin.PATCH("/images/:id", h.UpdateImage)
	admin.DELETE("/images/:id", h.DeleteImage)
	admin.POST("/product-images/:productId", h.AddProductImages)
	admin.DELETE("/product-images/:productId", h.DeleteProductImages)
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
