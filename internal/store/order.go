package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

type OrderStore struct {
	orders   *mongo.Collection
	payments *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{
		orders:   db.Collection("orders"),
		payments: db.Collection("payments"),
	}
}

func (s *OrderStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, *models.Payment, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var payment models.Payment
	err = s.payments.FindOne(ctx, bson.M{"order_id": order.ID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &order, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &order, &payment, nil
}

// Insert persiste commande + paiement. L'index unique sur idempotency_key
// transforme une double soumission concurrente en ErrIdempotencyConflict,
// que la saga traduit en rejeu.
func (s *OrderStore) Insert(ctx context.Context, order *models.Order, payment *models.Payment) error {
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return checkout.ErrIdempotencyConflict
		}
		return fmt.Errorf("insertion commande: %w", err)
	}
	if _, err := s.payments.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("insertion paiement: %w", err)
	}
	return nil
}

func (s *OrderStore) MarkCancelled(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": models.OrderStatusCancelled}},
	)
	return err
}

func (s *OrderStore) MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := s.payments.UpdateOne(ctx,
		bson.M{"order_id": orderID},
		bson.M{"$set": bson.M{"status": models.PaymentStatusFailed, "updated_at": time.Now()}},
	)
	return err
}

func (s *OrderStore) SetPaymentGatewayRef(ctx context.Context, orderID primitive.ObjectID, ref string) error {
	_, err := s.payments.UpdateOne(ctx,
		bson.M{"order_id": orderID},
		bson.M{"$set": bson.M{"gateway_ref": ref, "updated_at": time.Now()}},
	)
	return err
}

func (s *OrderStore) CountPaidByUser(ctx context.Context, userID string) (int64, error) {
	return s.orders.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": bson.A{models.OrderStatusPending, models.OrderStatusPaid}},
	})
}

func (s *OrderStore) CountByUserAndCoupon(ctx context.Context, userID, code string) (int64, error) {
	return s.orders.CountDocuments(ctx, bson.M{
		"user_id":     userID,
		"coupon_code": code,
		"status":      bson.M{"$ne": models.OrderStatusCancelled},
	})
}

// --- Lectures pour la surface HTTP ---

func (s *OrderStore) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SearchByUser - Repli MongoDB quand Elasticsearch est indisponible :
// regex insensible à la casse sur le numéro de commande et les titres de lignes
func (s *OrderStore) SearchByUser(ctx context.Context, userID, query string) ([]models.Order, error) {
	filter := bson.M{
		"user_id": userID,
		"$or": []bson.M{
			{"order_number": bson.M{"$regex": query, "$options": "i"}},
			{"items.title": bson.M{"$regex": query, "$options": "i"}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderStore) FindByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
