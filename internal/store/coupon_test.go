package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConsumeFilter(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	filter := consumeFilter("remise10", 60, now)

	// Normalisation de la casse
	assert.Equal(t, "REMISE10", filter["code"])
	assert.Equal(t, true, filter["is_active"])
	assert.Equal(t, bson.M{"$lte": now}, filter["starts_at"])
	assert.Equal(t, bson.M{"$gte": now}, filter["expires_at"])
	assert.Equal(t, bson.M{"$lte": 60.0}, filter["min_cart_value"])

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	// Un coupon sans champ usage_limit (import externe) doit rester
	// illimité : l'égalité à 0 seule ne matche pas un champ absent
	assert.Equal(t, bson.M{"usage_limit": bson.M{"$in": bson.A{0, nil}}}, or[0])

	// La limite se compare champ à champ dans la même opération
	assert.Equal(t, bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}}, or[1])
}
