package checkout

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// DeductionKind - Cible d'une décrémentation de stock (ensemble fermé)
type DeductionKind int

const (
	DeductSimple DeductionKind = iota
	DeductVariant
	DeductBundleChild
	DeductGift
)

func (k DeductionKind) String() string {
	switch k {
	case DeductSimple:
		return "simple"
	case DeductVariant:
		return "variant"
	case DeductBundleChild:
		return "bundle_child"
	case DeductGift:
		return "gift"
	}
	return "unknown"
}

// StockDeduction - Une décrémentation atomique à exécuter au moment de la
// réservation, puis à inverser telle quelle en cas de compensation.
// ProductID désigne toujours le document produit porteur du compteur ;
// SKU n'est renseigné que pour les variantes (élément imbriqué).
type StockDeduction struct {
	Kind      DeductionKind
	ProductID string
	SKU       string
	Quantity  int
}

// RequestItem - Ligne demandée par le client
type RequestItem struct {
	ProductID  string `json:"product_id"`
	VariantSKU string `json:"variant_sku,omitempty"`
	Quantity   int    `json:"quantity"`
	GiftSKU    string `json:"gift_sku,omitempty"`
}

// ResolvedLine - Ligne résolue par le Catalog Reader : prix courants,
// stock disponible dérivé et attributs d'affichage figés
type ResolvedLine struct {
	ProductID    string
	VariantSKU   string
	GiftSKU      string
	Title        string
	Image        string
	Attributes   map[string]string
	Quantity     int
	RegularPrice float64
	UnitPrice    float64
	IsGift       bool
}

// PlaceOrderRequest - L'opération "passer commande"
type PlaceOrderRequest struct {
	UserID         string
	Items          []RequestItem
	AddressID      string
	Address        *models.Address // adresse inline (nouvelle)
	PaymentMethod  string
	IdempotencyKey string
}

// GatewayRedirect - Payload de redirection vers la passerelle de paiement
type GatewayRedirect struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	RedirectURL     string `json:"redirect_url,omitempty"`
}

// PlaceOrderResult - Soit le replay d'une commande antérieure (Idempotent),
// soit une confirmation, soit une redirection passerelle
type PlaceOrderResult struct {
	Order      *models.Order
	Payment    *models.Payment
	Idempotent bool
	Redirect   *GatewayRedirect
}

// ErrIdempotencyConflict est renvoyé par OrderStore.Insert quand la clé
// d'idempotence existe déjà (index unique) : la saga rejoue la commande existante.
var ErrIdempotencyConflict = errors.New("clé d'idempotence déjà utilisée")

// --- Collaborateurs de la saga ---

type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	// Reserve exécute "décrémente available de N seulement si available >= N"
	// en une seule opération ; false = prédicat refusé (course perdue)
	Reserve(ctx context.Context, d StockDeduction) (bool, error)
	// Release inverse une déduction (incrément additif, sans prédicat)
	Release(ctx context.Context, d StockDeduction) error
}

type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	// Consume revalide les prédicats numériques et incrémente used_count en une
	// seule opération ; retourne le document post-update, ou (nil, nil) si refusé
	Consume(ctx context.Context, code string, subtotal float64, now time.Time) (*models.Coupon, error)
}

type OrderStore interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, *models.Payment, error)
	// Insert persiste commande + paiement ; ErrIdempotencyConflict si la clé existe
	Insert(ctx context.Context, order *models.Order, payment *models.Payment) error
	MarkCancelled(ctx context.Context, orderID primitive.ObjectID) error
	MarkPaymentFailed(ctx context.Context, orderID primitive.ObjectID) error
	SetPaymentGatewayRef(ctx context.Context, orderID primitive.ObjectID, ref string) error
	CountPaidByUser(ctx context.Context, userID string) (int64, error)
	CountByUserAndCoupon(ctx context.Context, userID, code string) (int64, error)
}

type CartStore interface {
	FindCheckoutByUser(ctx context.Context, userID string) (*models.Cart, error)
	// MarkOrdered : transition checkout → ordered (COD, rien d'autre à attendre)
	MarkOrdered(ctx context.Context, cartID string, orderID primitive.ObjectID) error
	// AttachOrder : le panier reste en checkout, pointant vers la commande,
	// dans l'attente du round-trip passerelle
	AttachOrder(ctx context.Context, cartID string, orderID primitive.ObjectID) error
	// DetachOrder : compensation, le panier redevient payable
	DetachOrder(ctx context.Context, cartID string) error
}

type AddressStore interface {
	FindByID(ctx context.Context, userID, addressID string) (*models.Address, error)
	Insert(ctx context.Context, addr *models.Address) error
}

type SettingsStore interface {
	GetShipping(ctx context.Context) (models.ShippingSettings, error)
}

// TxRunner exécute fn dans une transaction multi-documents : tout échec
// avant commit annule l'ensemble des écritures
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway - Client de la passerelle de paiement externe ; l'appel sort de la
// frontière transactionnelle et doit respecter le timeout du contexte
type Gateway interface {
	Initiate(ctx context.Context, order *models.Order, payment *models.Payment) (*GatewayRedirect, error)
}

// EventSink - Émission fire-and-forget de l'événement "commande passée"
type EventSink interface {
	OrderPlaced(order *models.Order)
}
