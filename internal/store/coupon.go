package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

type CouponStore struct {
	col *mongo.Collection
}

func NewCouponStore(db *mongo.Database) *CouponStore {
	return &CouponStore{col: db.Collection("coupons")}
}

func (s *CouponStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := s.col.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Consume revalide tous les prédicats numériques et incrémente used_count
// dans la même opération : c'est ce qui garantit used_count <= usage_limit
// sous consommation concurrente, jamais un read-then-write applicatif.
// Retourne le document post-incrément, ou (nil, nil) si le prédicat a refusé.
func (s *CouponStore) Consume(ctx context.Context, code string, subtotal float64, now time.Time) (*models.Coupon, error) {
	filter := consumeFilter(code, subtotal, now)
	update := bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": now},
	}

	var c models.Coupon
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// consumeFilter construit le prédicat de l'update atomique. usage_limit se
// compare via $in (0, null) : l'égalité Mongo à 0 ne matche pas un champ
// absent, un coupon importé sans usage_limit doit rester illimité.
func consumeFilter(code string, subtotal float64, now time.Time) bson.M {
	return bson.M{
		"code":           strings.ToUpper(code),
		"is_active":      true,
		"starts_at":      bson.M{"$lte": now},
		"expires_at":     bson.M{"$gte": now},
		"min_cart_value": bson.M{"$lte": subtotal},
		"$or": []bson.M{
			{"usage_limit": bson.M{"$in": bson.A{0, nil}}}, // illimité ou champ absent
			{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
}
