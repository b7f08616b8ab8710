package models

import "time"

const (
	CouponTypeFlat       = "flat"
	CouponTypePercentage = "percentage"
)

type Coupon struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Code         string    `json:"code" bson:"code"`
	Type         string    `json:"type" bson:"type"` // "flat" ou "percentage"
	Value        float64   `json:"value" bson:"value"`
	MinCartValue float64   `json:"min_cart_value" bson:"min_cart_value"`
	MaxDiscount  float64   `json:"max_discount,omitempty" bson:"max_discount,omitempty"` // plafond, type percentage uniquement (0 = sans plafond)
	UsageLimit   int       `json:"usage_limit" bson:"usage_limit"`                       // 0 = illimité
	UsedCount    int       `json:"used_count" bson:"used_count"`
	PerUserLimit int       `json:"per_user_limit" bson:"per_user_limit"` // 0 = illimité
	NewUserOnly  bool      `json:"new_user_only" bson:"new_user_only"`
	StartsAt     time.Time `json:"starts_at" bson:"starts_at"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// CouponValidation - Résultat d'une pré-validation de coupon (non atomique,
// purement indicative : la vérité est le consume atomique au moment de la commande)
type CouponValidation struct {
	IsValid      bool    `json:"is_valid"`
	ErrorCode    string  `json:"error_code,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Discount     float64 `json:"discount"`
	Type         string  `json:"type,omitempty"`
	Code         string  `json:"code,omitempty"`
}
