package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
)

// CouponHandler - Validation "douce" d'un code promo avant le checkout.
// Purement consultatif : seule la saga consomme réellement le coupon.
type CouponHandler struct {
	Svc *checkout.Service
}

type validateCouponRequest struct {
	Code      string  `json:"code" binding:"required"`
	CartTotal float64 `json:"cart_total" binding:"required,gt=0"`
}

// POST /api/coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	validation := h.Svc.ValidateCoupon(c.Request.Context(), userID, req.Code, req.CartTotal)
	c.JSON(http.StatusOK, validation)
}
