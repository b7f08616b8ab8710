package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/cache"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/config"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/database"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/events"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/handlers"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/payment"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/routes"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/store"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	log.Println("✅ Stripe initialisé")

	database.ConnectDatabases()
	defer database.CloseMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.EnsureIndexes(ctx, database.MongoOrdersDB, database.MongoProductsDB); err != nil {
		cancel()
		log.Fatal("❌ Création des index MongoDB échouée:", err)
	}
	cancel()
	log.Println("✅ Index MongoDB en place")

	products := store.NewProductStore(database.MongoProductsDB)
	coupons := store.NewCouponStore(database.MongoOrdersDB)
	orders := store.NewOrderStore(database.MongoOrdersDB)
	carts := store.NewCartStore(database.MongoOrdersDB)
	addresses := store.NewAddressStore(database.MongoOrdersDB)
	settings := cache.NewShippingSettings(store.NewSettingsStore(database.MongoOrdersDB), database.Redis)

	svc := checkout.NewService(checkout.Service{
		Products:  products,
		Coupons:   coupons,
		Orders:    orders,
		Carts:     carts,
		Addresses: addresses,
		Settings:  settings,
		Tx:        store.NewTxRunner(database.MongoClient),
		Gateway:   payment.NewStripeGateway(),
		Events:    events.NewPublisher(database.Redis),
	})

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Handlers{
		Orders:   &handlers.OrderHandler{Svc: svc, Orders: orders},
		Coupons:  &handlers.CouponHandler{Svc: svc},
		Shipping: &handlers.ShippingHandler{Settings: settings},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur lancé sur le port", port)
	r.Run(":" + port)
}
