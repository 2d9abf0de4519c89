package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

type Options struct {
	Env         string
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewEngine builds the gin engine with logging, recovery and CORS, and registers every route on h
func NewEngine(opts Options, h *Handler) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := global.LoggerOrNop(opts.Logger)

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	registerRoutes(router, h)
	return router
}

func registerRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	api.Use(Authenticate())
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/home", h.GetHome)

		products := api.Group("/products")
		{
			products.GET("/featured", h.GetFeaturedProducts)
			products.GET("/search", h.SearchProducts)
			products.GET("/:id", h.GetProductByID)
		}

		offers := api.Group("/offers")
		{
			offers.GET("/active", h.GetActiveOffers)
		}

		cart := api.Group("/cart")
		{
			cart.POST("", h.CreateCart)
			cart.GET("/:sessionId", h.GetCart)
			cart.POST("/:sessionId/items", h.AddToCart)
			cart.PUT("/:sessionId/items/:productId", h.UpdateCartItem)
			cart.DELETE("/:sessionId/items/:productId", h.RemoveFromCart)
			cart.DELETE("/:sessionId", h.ClearCart)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.SignUp)
			auth.POST("/signin", h.SignIn)
			auth.POST("/signout", h.SignOut)
			auth.GET("/me", RequireUser(h.identity), h.Me)
		}

		checkout := api.Group("/checkout")
		{
			checkout.GET("/:sessionId/quote", h.GetQuote)
			checkout.POST("/:sessionId/intent", h.BeginCheckout)
			checkout.POST("/:sessionId/confirm", h.ConfirmCheckout)
			checkout.POST("/:sessionId/finalize", h.FinalizeCheckout)
		}

		orders := api.Group("/orders")
		orders.Use(RequireUser(h.identity))
		{
			orders.GET("", h.GetUserOrders)
			orders.GET("/insights", h.GetOrderInsights)
			orders.GET("/:id", h.GetOrderByID)
		}
	}
}
