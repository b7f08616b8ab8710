package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/services"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/store"
)

// OrderHandler - Surface HTTP de la saga de commande
type OrderHandler struct {
	Svc    *checkout.Service
	Orders *store.OrderStore
}

type placeOrderItem struct {
	ProductID  string `json:"product_id" binding:"required"`
	VariantSKU string `json:"variant_sku"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	GiftSKU    string `json:"gift_sku"`
}

type placeOrderRequest struct {
	Items          []placeOrderItem `json:"items" binding:"required,min=1,dive"`
	AddressID      string           `json:"address_id"`
	Address        *models.Address  `json:"address"`
	PaymentMethod  string           `json:"payment_method" binding:"required"`
	IdempotencyKey string           `json:"idempotency_key" binding:"required"`
}

// POST /api/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide", "details": err.Error()})
		return
	}

	items := make([]checkout.RequestItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.RequestItem{
			ProductID:  it.ProductID,
			VariantSKU: it.VariantSKU,
			Quantity:   it.Quantity,
			GiftSKU:    it.GiftSKU,
		})
	}

	result, err := h.Svc.PlaceOrder(c.Request.Context(), checkout.PlaceOrderRequest{
		UserID:         userID,
		Items:          items,
		AddressID:      req.AddressID,
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}

	resp := gin.H{
		"order":      result.Order,
		"payment":    result.Payment,
		"idempotent": result.Idempotent,
	}
	if result.Redirect != nil {
		resp["redirect"] = result.Redirect
	}
	c.JSON(status, resp)
}

// GET /api/orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orders, err := h.Orders.FindByUser(c.Request.Context(), userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// 🔍 Recherche dans ses commandes via Elasticsearch ou Mongo si indisponible
// GET /api/orders/search?q=...
func (h *OrderHandler) SearchMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 1️⃣ Tentative de recherche dans Elasticsearch
	results, err := services.SearchOrders(userID, query)
	if err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, gin.H{"orders": results})
		return
	}

	// 2️⃣ Si Elasticsearch est vide ou indisponible → fallback MongoDB
	orders, err := h.Orders.SearchByUser(c.Request.Context(), userID, query)
	if err != nil {
		log.Println("❌ Erreur recherche MongoDB:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche commandes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande invalide"})
		return
	}

	order, err := h.Orders.FindByIDForUser(c.Request.Context(), oid, userID)
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// writeCheckoutError traduit une erreur métier de la saga en réponse HTTP.
// Le code stable part dans errorCode, le client ne doit jamais parser message.
func writeCheckoutError(c *gin.Context, err error) {
	var ce *checkout.Error
	if !errors.As(err, &ce) {
		log.Println("❌ Erreur interne saga:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(httpStatusFor(ce.Code), ce)
}

func httpStatusFor(code string) int {
	switch code {
	case checkout.CodeInvalidRequest, checkout.CodeAddressRequired:
		return http.StatusBadRequest
	case checkout.CodeProductNotFound, checkout.CodeVariantNotFound, checkout.CodeCartNotFound:
		return http.StatusNotFound
	case checkout.CodeProductNotOrderable, checkout.CodeGiftNotAvailable,
		checkout.CodeOutOfStock, checkout.CodeCheckoutExpired,
		checkout.CodeInvalidCoupon, checkout.CodeCouponInactive,
		checkout.CodeCouponExpired, checkout.CodeMinCartNotMet,
		checkout.CodeCouponExhausted, checkout.CodeNotFirstOrder,
		checkout.CodePerUserLimitReached:
		return http.StatusConflict
	case checkout.CodeGatewayFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
