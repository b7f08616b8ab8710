package models

import "time"

// Types de produits vendables
const (
	ProductTypeSimple       = "SIMPLE"
	ProductTypeConfigurable = "CONFIGURABLE"
	ProductTypeBundle       = "BUNDLE"
	ProductTypeChoiceGroup  = "CHOICE_GROUP" // jamais commandable directement
)

// PriceTier - Prix unitaire dégressif par quantité
type PriceTier struct {
	MinQty    int     `json:"min_qty" bson:"min_qty"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
}

// Variant - Déclinaison d'un produit CONFIGURABLE (taille, couleur...)
type Variant struct {
	SKU        string            `json:"sku" bson:"sku"`
	Price      float64           `json:"price" bson:"price"`
	OfferPrice float64           `json:"offer_price,omitempty" bson:"offer_price,omitempty"`
	Available  int               `json:"available" bson:"available"`
	Attributes map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"` // {"size": "L", "color": "red"}
	IsActive   bool              `json:"is_active" bson:"is_active"`
}

// BundleItem - Composant d'un BUNDLE : qty_per_bundle unités du SKU enfant par bundle vendu
type BundleItem struct {
	ChildSKU     string `json:"child_sku" bson:"child_sku"`
	QtyPerBundle int    `json:"qty_per_bundle" bson:"qty_per_bundle"`
}

// GiftSlot - Configuration du cadeau optionnel offert avec le produit
type GiftSlot struct {
	Enabled bool     `json:"enabled" bson:"enabled"`
	SKUs    []string `json:"skus,omitempty" bson:"skus,omitempty"`
}

type Product struct {
	ID           string       `json:"id" bson:"_id"`
	SKU          string       `json:"sku" bson:"sku"`
	Type         string       `json:"type" bson:"type"`
	Title        string       `json:"title" bson:"title"`
	Image        string       `json:"image,omitempty" bson:"image,omitempty"`
	Price        float64      `json:"price" bson:"price"`
	OfferPrice   float64      `json:"offer_price,omitempty" bson:"offer_price,omitempty"`
	Available    int          `json:"available" bson:"available"`
	Stock        int          `json:"stock" bson:"stock"` // miroir legacy de available, maintenu par chaque update atomique
	PriceTiers   []PriceTier  `json:"price_tiers,omitempty" bson:"price_tiers,omitempty"`
	Variants     []Variant    `json:"variants,omitempty" bson:"variants,omitempty"`
	BundleConfig []BundleItem `json:"bundle_config,omitempty" bson:"bundle_config,omitempty"`
	GiftSlot     *GiftSlot    `json:"gift_slot,omitempty" bson:"gift_slot,omitempty"`
	IsActive     bool         `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// FindVariant retourne la variante active correspondant au SKU, ou nil
func (p *Product) FindVariant(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku && p.Variants[i].IsActive {
			return &p.Variants[i]
		}
	}
	return nil
}

// StockMovement - Trace d'un mouvement de stock (vente, compensation, réassort)
type StockMovement struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ProductID string    `json:"product_id" bson:"product_id"`
	SKU       string    `json:"sku,omitempty" bson:"sku,omitempty"`
	Type      string    `json:"type" bson:"type"` // "sale", "restock", "return", "compensation"
	Quantity  int       `json:"quantity" bson:"quantity"`
	Reason    string    `json:"reason" bson:"reason"`
	OrderID   string    `json:"order_id,omitempty" bson:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
