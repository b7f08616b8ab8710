package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

type CartStore struct {
	col *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{col: db.Collection("carts")}
}

func (s *CartStore) FindCheckoutByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{
		"user_id": userID,
		"status":  models.CartStatusCheckout,
	}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) MarkOrdered(ctx context.Context, cartID string, orderID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": cartID, "status": models.CartStatusCheckout},
		bson.M{"$set": bson.M{
			"status":     models.CartStatusOrdered,
			"order_id":   orderID.Hex(),
			"updated_at": time.Now(),
		}},
	)
	return err
}

func (s *CartStore) AttachOrder(ctx context.Context, cartID string, orderID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": cartID, "status": models.CartStatusCheckout},
		bson.M{"$set": bson.M{
			"order_id":   orderID.Hex(),
			"updated_at": time.Now(),
		}},
	)
	return err
}

func (s *CartStore) DetachOrder(ctx context.Context, cartID string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": cartID},
		bson.M{
			"$unset": bson.M{"order_id": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	return err
}
