package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

type AddressStore struct {
	col *mongo.Collection
}

func NewAddressStore(db *mongo.Database) *AddressStore {
	return &AddressStore{col: db.Collection("addresses")}
}

// FindByID vérifie au passage que l'adresse appartient bien à l'utilisateur
func (s *AddressStore) FindByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	oid, err := primitive.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, nil
	}
	var addr models.Address
	err = s.col.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&addr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *AddressStore) Insert(ctx context.Context, addr *models.Address) error {
	_, err := s.col.InsertOne(ctx, addr)
	return err
}
