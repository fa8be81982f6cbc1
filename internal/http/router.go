package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig collects what the HTTP surface is built from. Backend-backed
// parts (Accounts, Catalog, Products, AllOrders) are nil when no backend is
// configured.
type RouterConfig struct {
	Sessions         SessionSource
	OTP              OTPService
	Accounts         AccountBackend
	Catalog          Catalog
	Products         catalog.ProductAdmin
	AllOrders        OrderLister
	RequestTimeout   time.Duration
	CORSAllowOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	authHandler := NewAuthHandler(cfg.OTP, cfg.Accounts, cfg.RequestTimeout)
	cartHandler := NewCartHandler()
	checkoutHandler := NewCheckoutHandler(cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(cfg.RequestTimeout)
	adminHandler := NewAdminHandler(cfg.Products, cfg.AllOrders, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader, middleware.RequestIDHeader},
		ExposedHeaders:   []string{SessionHeader, middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			if cfg.Catalog == nil {
				r.HandleFunc("/*", backendNotConfigured)
				return
			}
			productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
			r.Get("/", productHandler.ListProducts)
			r.Get("/home", productHandler.Home)
			r.Get("/top", productHandler.TopRated)
			r.Get("/filters", productHandler.Filters)
			r.Get("/{product_id}", productHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions))

			r.Post("/session", func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, map[string]string{"sessionId": sessionFromContext(r.Context()).ID})
			})

			r.Route("/auth", func(r chi.Router) {
				r.Post("/otp", authHandler.RequestOTP)
				r.Post("/otp/verify", authHandler.VerifyOTP)
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
				r.Post("/logout", authHandler.Logout)
				r.Get("/profile", authHandler.Profile)
				r.Put("/profile", authHandler.UpdateProfile)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Put("/payment-method", cartHandler.SetPaymentMethod)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetCheckout)
				r.Post("/", checkoutHandler.BeginCheckout)
				r.Put("/address", checkoutHandler.SaveAddress)
				r.Post("/payment", checkoutHandler.OpenPayment)
				r.Post("/confirm", checkoutHandler.Confirm)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/mine", ordersHandler.ListMine)
				r.Get("/{order_id}", ordersHandler.GetOrder)
				r.Put("/{order_id}/pay", ordersHandler.PayOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/products", adminHandler.CreateProduct)
				r.Put("/products/{product_id}", adminHandler.UpdateProduct)
				r.Delete("/products/{product_id}", adminHandler.DeleteProduct)
				r.Get("/analytics", adminHandler.Analytics)
			})
		})
	})

	return r
}

func backendNotConfigured(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusServiceUnavailable, "backend_not_configured", "the catalog needs a backend")
}
