package models

import "time"

// Cycle de vie du panier — les items ne sont modifiables qu'en "active".
// Le passage active → checkout (avec checkout_expiry) est fait par le
// collaborateur externe de démarrage de checkout ; ici on ne fait que lire
// cet état et le faire avancer.
const (
	CartStatusActive   = "active"
	CartStatusCheckout = "checkout"
	CartStatusOrdered  = "ordered"
)

// AppliedCoupon - Coupon appliqué au panier (un seul au maximum)
type AppliedCoupon struct {
	Code     string  `json:"code" bson:"code"`
	Discount float64 `json:"discount" bson:"discount"`
}

// CartItem - Ligne de panier avec snapshot d'affichage figé au moment de l'ajout
type CartItem struct {
	ProductID  string `json:"product_id" bson:"product_id"`
	VariantSKU string `json:"variant_sku,omitempty" bson:"variant_sku,omitempty"`
	Quantity   int    `json:"quantity" bson:"quantity"`
	GiftSKU    string `json:"gift_sku,omitempty" bson:"gift_sku,omitempty"`
	Title      string `json:"title" bson:"title"`
	Image      string `json:"image,omitempty" bson:"image,omitempty"`
}

type Cart struct {
	ID             string         `json:"id" bson:"_id"`
	UserID         string         `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Items          []CartItem     `json:"items" bson:"items"`
	Status         string         `json:"status" bson:"status"`
	Coupon         *AppliedCoupon `json:"coupon,omitempty" bson:"coupon,omitempty"`
	CheckoutExpiry time.Time      `json:"checkout_expiry,omitempty" bson:"checkout_expiry,omitempty"`
	OrderID        string         `json:"order_id,omitempty" bson:"order_id,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// FindItem retrouve la ligne de panier correspondant au couple produit/variante
func (c *Cart) FindItem(productID, variantSKU string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantSKU == variantSKU {
			return &c.Items[i]
		}
	}
	return nil
}
