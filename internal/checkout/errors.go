package checkout

import "fmt"

// Codes d'erreur stables exposés aux clients (champ errorCode des réponses)
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeProductNotOrderable = "PRODUCT_NOT_ORDERABLE"
	CodeVariantNotFound     = "VARIANT_NOT_FOUND"
	CodeGiftNotAvailable    = "GIFT_NOT_AVAILABLE"
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodeCheckoutExpired     = "CHECKOUT_EXPIRED"
	CodeCartNotFound        = "CART_NOT_FOUND"
	CodeAddressRequired     = "ADDRESS_REQUIRED"

	CodeInvalidCoupon       = "INVALID_COUPON"
	CodeCouponInactive      = "COUPON_INACTIVE"
	CodeCouponExpired       = "COUPON_EXPIRED"
	CodeMinCartNotMet       = "MIN_CART_NOT_MET"
	CodeCouponExhausted     = "COUPON_EXHAUSTED"
	CodeNotFirstOrder       = "NOT_FIRST_ORDER"
	CodePerUserLimitReached = "PER_USER_LIMIT_REACHED"

	CodeGatewayFailed = "PAYMENT_GATEWAY_FAILED"
)

// Error - Rejet métier porteur d'un code stable et de son contexte.
// Race indique une réservation perdue face à une commande concurrente :
// le client doit re-coter et réessayer, ce n'est pas un échec dur.
// OrderCancelled signale qu'une commande déjà committée a été annulée
// par compensation après un échec passerelle (aucun débit n'a eu lieu).
type Error struct {
	Code           string  `json:"errorCode"`
	Message        string  `json:"message"`
	ProductID      string  `json:"productId,omitempty"`
	SKU            string  `json:"sku,omitempty"`
	Available      int     `json:"available,omitempty"`
	Requested      int     `json:"requested,omitempty"`
	MinCartValue   float64 `json:"minCartValue,omitempty"`
	Race           bool    `json:"race,omitempty"`
	OrderCancelled bool    `json:"orderCancelled,omitempty"`
}

func (e *Error) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("%s: %s (produit %s)", e.Code, e.Message, e.ProductID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func outOfStock(productID, sku string, available, requested int, race bool) *Error {
	return &Error{
		Code:      CodeOutOfStock,
		Message:   "Stock insuffisant",
		ProductID: productID,
		SKU:       sku,
		Available: available,
		Requested: requested,
		Race:      race,
	}
}
