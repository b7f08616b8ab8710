package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/handlers"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/middleware"
)

// Handlers regroupe les handlers injectés par le main
type Handlers struct {
	Orders   *handlers.OrderHandler
	Coupons  *handlers.CouponHandler
	Shipping *handlers.ShippingHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.Use(corsConfig())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public
	api.GET("/shipping/options", h.Shipping.GetShippingOptions)

	// Authentifié
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/orders", h.Orders.PlaceOrder)
		authed.GET("/orders", h.Orders.GetMyOrders)
		authed.GET("/orders/search", h.Orders.SearchMyOrders)
		authed.GET("/orders/:id", h.Orders.GetOrderByID)
		authed.POST("/coupons/validate", h.Coupons.ValidateCoupon)
	}
}

func corsConfig() gin.HandlerFunc {
	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
