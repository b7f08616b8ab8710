package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

const (
	shippingSettingsKey = "settings:shipping"
	shippingSettingsTTL = 5 * time.Minute
)

// ShippingSettings - Cache read-through Redis devant le store de paramètres
// du site : la saga lit les paramètres une fois par requête, autant éviter
// un aller MongoDB à chaque commande.
type ShippingSettings struct {
	inner checkout.SettingsStore
	rdb   *redis.Client
}

func NewShippingSettings(inner checkout.SettingsStore, rdb *redis.Client) *ShippingSettings {
	return &ShippingSettings{inner: inner, rdb: rdb}
}

func (c *ShippingSettings) GetShipping(ctx context.Context) (models.ShippingSettings, error) {
	if data, err := c.rdb.Get(ctx, shippingSettingsKey).Result(); err == nil {
		var settings models.ShippingSettings
		if err := json.Unmarshal([]byte(data), &settings); err == nil {
			return settings, nil
		}
	}

	settings, err := c.inner.GetShipping(ctx)
	if err != nil {
		return settings, err
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := c.rdb.Set(ctx, shippingSettingsKey, data, shippingSettingsTTL).Err(); err != nil {
			log.Printf("⚠️ Cache paramètres livraison non rafraîchi: %v", err)
		}
	}
	return settings, nil
}
