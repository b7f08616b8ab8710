package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Valeurs de repli si le document de paramètres n'a jamais été créé
var defaultShipping = models.ShippingSettings{
	FreeShippingThreshold: 50,
	ShippingCost:          5.99,
}

type SettingsStore struct {
	col *mongo.Collection
}

func NewSettingsStore(db *mongo.Database) *SettingsStore {
	return &SettingsStore{col: db.Collection("site_settings")}
}

func (s *SettingsStore) GetShipping(ctx context.Context) (models.ShippingSettings, error) {
	var doc struct {
		Shipping models.ShippingSettings `bson:"shipping"`
	}
	err := s.col.FindOne(ctx, bson.M{"_id": "site"}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return defaultShipping, nil
	}
	if err != nil {
		return models.ShippingSettings{}, err
	}
	return doc.Shipping, nil
}
