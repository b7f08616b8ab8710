// Package store implémente les collaborateurs du checkout sur MongoDB :
// transactions multi-documents scopées à une session, et updates
// conditionnelles atomiques (prédicat + mutation en une seule opération)
// pour les compteurs de stock et d'utilisation des coupons.
package store

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes crée les index nécessaires à la cohérence : l'index unique
// sur idempotency_key est ce qui garantit "au plus une commande par clé"
// sous soumissions concurrentes.
func EnsureIndexes(ctx context.Context, ordersDB, productsDB *mongo.Database) error {
	_, err := ordersDB.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "coupon_code", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("index orders: %w", err)
	}

	_, err = ordersDB.Collection("coupons").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("index coupons: %w", err)
	}

	_, err = productsDB.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("index products: %w", err)
	}

	log.Println("✅ Index MongoDB vérifiés")
	return nil
}
