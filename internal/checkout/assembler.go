package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Order Assembler : construit le snapshot immuable commande + paiement et
// fait avancer le panier. Après création, ni la commande ni ses lignes ne
// sont re-dérivées du catalogue vivant.

// newOrderNumber génère un identifiant de commande lisible, ex: CMD-20260830-4F2A1C
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("CMD-%s-%s", now.Format("20060102"), suffix)
}

func buildOrder(req PlaceOrderRequest, lines []ResolvedLine, quote Quote, couponCode string, addr models.Address, now time.Time) (*models.Order, *models.Payment) {
	orderID := primitive.NewObjectID()

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID:    l.ProductID,
			VariantSKU:   l.VariantSKU,
			GiftSKU:      l.GiftSKU,
			Title:        l.Title,
			Image:        l.Image,
			Attributes:   l.Attributes,
			Quantity:     l.Quantity,
			UnitPrice:    RoundMoney(l.UnitPrice),
			RegularPrice: RoundMoney(l.RegularPrice),
			IsGift:       l.IsGift,
		})
	}

	order := &models.Order{
		ID:             orderID,
		OrderNumber:    newOrderNumber(now),
		IdempotencyKey: req.IdempotencyKey,
		UserID:         req.UserID,
		Items:          items,
		Address:        addr,
		CouponCode:     couponCode,
		AmountTotal:    quote.GrandTotal,
		Pricing: models.PricingSnapshot{
			Subtotal:   quote.Subtotal,
			Total:      quote.Total,
			Discount:   quote.Discount,
			Shipping:   quote.Shipping,
			GrandTotal: quote.GrandTotal,
			ComputedAt: quote.ComputedAt,
		},
		Status:    models.OrderStatusPending,
		CreatedAt: now,
	}

	paymentStatus := models.PaymentStatusInitiated
	if req.PaymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}
	payment := &models.Payment{
		ID:        primitive.NewObjectID(),
		OrderID:   orderID,
		Method:    req.PaymentMethod,
		Amount:    quote.GrandTotal,
		Status:    paymentStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return order, payment
}

// persistOrder écrit commande + paiement puis fait avancer le panier :
// ordered pour le COD, sinon le panier reste en checkout pointant vers la
// commande en attendant le round-trip passerelle
func (s *Service) persistOrder(ctx context.Context, cart *models.Cart, order *models.Order, payment *models.Payment) error {
	if err := s.Orders.Insert(ctx, order, payment); err != nil {
		return err
	}
	if payment.Method == models.PaymentMethodCOD {
		if err := s.Carts.MarkOrdered(ctx, cart.ID, order.ID); err != nil {
			return fmt.Errorf("transition panier → ordered: %w", err)
		}
		return nil
	}
	if err := s.Carts.AttachOrder(ctx, cart.ID, order.ID); err != nil {
		return fmt.Errorf("rattachement commande au panier: %w", err)
	}
	return nil
}

// resolveAddress retourne le snapshot d'adresse : référence existante ou
// adresse inline créée à la volée
func (s *Service) resolveAddress(ctx context.Context, req PlaceOrderRequest) (*models.Address, error) {
	if req.Address != nil {
		addr := *req.Address
		addr.ID = primitive.NewObjectID()
		addr.UserID = req.UserID
		if err := s.Addresses.Insert(ctx, &addr); err != nil {
			return nil, fmt.Errorf("création adresse: %w", err)
		}
		return &addr, nil
	}
	if req.AddressID == "" {
		return nil, newError(CodeAddressRequired, "Adresse de livraison requise")
	}
	addr, err := s.Addresses.FindByID(ctx, req.UserID, req.AddressID)
	if err != nil {
		return nil, fmt.Errorf("lecture adresse %s: %w", req.AddressID, err)
	}
	if addr == nil {
		return nil, newError(CodeAddressRequired, "Adresse introuvable ou non autorisée")
	}
	return addr, nil
}
