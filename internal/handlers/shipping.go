package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// ShippingHandler - Options de livraison affichées au panier
type ShippingHandler struct {
	Settings checkout.SettingsStore
}

// GET /api/shipping/options?cart_total=42.50
func (h *ShippingHandler) GetShippingOptions(c *gin.Context) {
	cartTotal, err := strconv.ParseFloat(c.DefaultQuery("cart_total", "0"), 64)
	if err != nil || cartTotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart_total invalide"})
		return
	}

	settings, err := h.Settings.GetShipping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	isFree := cartTotal >= settings.FreeShippingThreshold
	standardPrice := settings.ShippingCost
	if isFree {
		standardPrice = 0
	}

	c.JSON(http.StatusOK, models.ShippingCalculation{
		Options: []models.ShippingOption{
			{
				ID:            "standard",
				Name:          "Livraison standard",
				Description:   "Livraison à domicile sous 3 à 5 jours ouvrés",
				Price:         standardPrice,
				EstimatedDays: 5,
			},
		},
		FreeThreshold: settings.FreeShippingThreshold,
		CartTotal:     cartTotal,
		IsFree:        isFree,
	})
}
