package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

type ProductStore struct {
	col       *mongo.Collection
	movements *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{
		col:       db.Collection("products"),
		movements: db.Collection("stock_movements"),
	}
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := s.col.FindOne(ctx, bson.M{"sku": sku}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reserve - "décrémente available de N seulement si available >= N" en une
// seule update conditionnelle. ModifiedCount == 0 signifie que le prédicat a
// refusé : le stock a été consommé par une commande concurrente entre la
// lecture du catalogue et maintenant.
func (s *ProductStore) Reserve(ctx context.Context, d checkout.StockDeduction) (bool, error) {
	if d.Kind == checkout.DeductVariant {
		res, err := s.col.UpdateOne(ctx,
			bson.M{"_id": d.ProductID},
			bson.M{
				"$inc": bson.M{"variants.$[v].available": -d.Quantity},
				"$set": bson.M{"updated_at": time.Now()},
			},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{bson.M{
					"v.sku":       d.SKU,
					"v.available": bson.M{"$gte": d.Quantity},
				}},
			}),
		)
		if err != nil {
			return false, err
		}
		return res.ModifiedCount == 1, nil
	}

	// Simple, enfant de bundle ou cadeau : le compteur vit sur le document
	// produit lui-même, miroir legacy "stock" maintenu dans la même opération
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": d.ProductID, "available": bson.M{"$gte": d.Quantity}},
		bson.M{
			"$inc": bson.M{"available": -d.Quantity, "stock": -d.Quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Release inverse une décrémentation : même update en additif, sans prédicat.
// Une trace de mouvement est posée en best-effort pour l'audit.
func (s *ProductStore) Release(ctx context.Context, d checkout.StockDeduction) error {
	var err error
	if d.Kind == checkout.DeductVariant {
		_, err = s.col.UpdateOne(ctx,
			bson.M{"_id": d.ProductID},
			bson.M{
				"$inc": bson.M{"variants.$[v].available": d.Quantity},
				"$set": bson.M{"updated_at": time.Now()},
			},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{bson.M{"v.sku": d.SKU}},
			}),
		)
	} else {
		_, err = s.col.UpdateOne(ctx,
			bson.M{"_id": d.ProductID},
			bson.M{
				"$inc": bson.M{"available": d.Quantity, "stock": d.Quantity},
				"$set": bson.M{"updated_at": time.Now()},
			},
		)
	}
	if err != nil {
		return fmt.Errorf("restitution stock %s: %w", d.ProductID, err)
	}

	_, _ = s.movements.InsertOne(ctx, models.StockMovement{
		ProductID: d.ProductID,
		SKU:       d.SKU,
		Type:      "compensation",
		Quantity:  d.Quantity,
		Reason:    "échec passerelle de paiement",
		CreatedAt: time.Now(),
	})
	return nil
}
