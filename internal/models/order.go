package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending   = "pending"   // COD : en attente de livraison
	PaymentStatusInitiated = "initiated" // paiement passerelle créé, en attente du round-trip
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
)

const PaymentMethodCOD = "cod" // paiement à la livraison, pas de round-trip passerelle

// OrderItem - Ligne de commande entièrement figée à l'achat : prix, affichage,
// variante et cadeau ne sont jamais re-dérivés du catalogue vivant
type OrderItem struct {
	ProductID    string            `bson:"product_id" json:"product_id"`
	VariantSKU   string            `bson:"variant_sku,omitempty" json:"variant_sku,omitempty"`
	GiftSKU      string            `bson:"gift_sku,omitempty" json:"gift_sku,omitempty"`
	Title        string            `bson:"title" json:"title"`
	Image        string            `bson:"image,omitempty" json:"image,omitempty"`
	Attributes   map[string]string `bson:"attributes,omitempty" json:"attributes,omitempty"`
	Quantity     int               `bson:"quantity" json:"quantity"`
	UnitPrice    float64           `bson:"unit_price" json:"unit_price"`
	RegularPrice float64           `bson:"regular_price" json:"regular_price"`
	IsGift       bool              `bson:"is_gift,omitempty" json:"is_gift,omitempty"`
}

// PricingSnapshot - Totaux figés pour audit
type PricingSnapshot struct {
	Subtotal   float64   `bson:"subtotal" json:"subtotal"`
	Total      float64   `bson:"total" json:"total"`
	Discount   float64   `bson:"discount" json:"discount"`
	Shipping   float64   `bson:"shipping" json:"shipping"`
	GrandTotal float64   `bson:"grand_total" json:"grand_total"`
	ComputedAt time.Time `bson:"computed_at" json:"computed_at"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber    string             `bson:"order_number" json:"order_number"`
	IdempotencyKey string             `bson:"idempotency_key" json:"idempotency_key"`
	UserID         string             `bson:"user_id" json:"user_id"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Address        Address            `bson:"address" json:"address"`
	CouponCode     string             `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	AmountTotal    float64            `bson:"amount_total" json:"amount_total"`
	Pricing        PricingSnapshot    `bson:"pricing" json:"pricing"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Payment - Un paiement par commande
type Payment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    primitive.ObjectID `bson:"order_id" json:"order_id"`
	Method     string             `bson:"method" json:"method"`
	Amount     float64            `bson:"amount" json:"amount"`
	Status     string             `bson:"status" json:"status"`
	GatewayRef string             `bson:"gateway_ref,omitempty" json:"gateway_ref,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
