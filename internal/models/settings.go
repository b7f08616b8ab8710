package models

// ShippingSettings - Paramètres de livraison du site, lus une fois par requête
type ShippingSettings struct {
	FreeShippingThreshold float64 `json:"free_shipping_threshold" bson:"free_shipping_threshold"`
	ShippingCost          float64 `json:"shipping_cost" bson:"shipping_cost"`
}

// ShippingOption - Option de livraison présentée au client
type ShippingOption struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	EstimatedDays int     `json:"estimated_days"`
}

type ShippingCalculation struct {
	Options       []ShippingOption `json:"options"`
	FreeThreshold float64          `json:"free_threshold"`
	CartTotal     float64          `json:"cart_total"`
	IsFree        bool             `json:"is_free"`
}
