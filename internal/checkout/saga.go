package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Saga Coordinator : tout jusqu'à COMMITTED se déroule dans une seule
// transaction — n'importe quel échec avant commit annule l'ensemble, aucun
// état partiel (stock, coupon, commande) ne survit. Après commit, le
// round-trip passerelle sort de la frontière transactionnelle : son échec
// déclenche la compensation manuelle (GATEWAY_FAILED → COMPENSATING →
// COMPENSATED).

type sagaState string

const (
	stateValidating    sagaState = "VALIDATING"
	stateReserving     sagaState = "RESERVING"
	statePricing       sagaState = "PRICING"
	statePersisting    sagaState = "PERSISTING"
	stateCommitted     sagaState = "COMMITTED"
	stateGatewayOK     sagaState = "GATEWAY_OK"
	stateGatewayFailed sagaState = "GATEWAY_FAILED"
	stateCompensating  sagaState = "COMPENSATING"
	stateCompensated   sagaState = "COMPENSATED"
)

const defaultGatewayTimeout = 15 * time.Second

// Service orchestre la saga de passage de commande
type Service struct {
	Products  ProductStore
	Coupons   CouponStore
	Orders    OrderStore
	Carts     CartStore
	Addresses AddressStore
	Settings  SettingsStore
	Tx        TxRunner
	Gateway   Gateway
	Events    EventSink

	// Timeout du round-trip passerelle post-commit : doit rester court pour
	// que la compensation démarre rapidement en cas de panne fournisseur
	GatewayTimeout time.Duration
	Now            func() time.Time
}

func NewService(s Service) *Service {
	if s.GatewayTimeout <= 0 {
		s.GatewayTimeout = defaultGatewayTimeout
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return &s
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func validateRequest(req PlaceOrderRequest) error {
	if req.UserID == "" {
		return newError(CodeInvalidRequest, "Utilisateur requis")
	}
	if req.IdempotencyKey == "" {
		return newError(CodeInvalidRequest, "Clé d'idempotence requise")
	}
	if len(req.Items) == 0 {
		return newError(CodeInvalidRequest, "Panier vide")
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return newError(CodeInvalidRequest, "Identifiant produit manquant")
		}
		if item.Quantity <= 0 {
			return &Error{Code: CodeInvalidRequest, Message: "Quantité invalide", ProductID: item.ProductID, Requested: item.Quantity}
		}
	}
	if req.PaymentMethod == "" {
		return newError(CodeInvalidRequest, "Méthode de paiement requise")
	}
	return nil
}

// PlaceOrder exécute la saga complète. Au plus une commande réussie par clé
// d'idempotence : une clé déjà vue rejoue la commande existante telle quelle.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	now := s.now()

	// Lookup d'idempotence avant d'ouvrir la moindre transaction
	if existing, payment, err := s.Orders.FindByIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		return nil, fmt.Errorf("lookup idempotence: %w", err)
	} else if existing != nil {
		log.Printf("🔁 Rejeu idempotent de la commande %s (clé %s)", existing.OrderNumber, req.IdempotencyKey)
		return &PlaceOrderResult{Order: existing, Payment: payment, Idempotent: true}, nil
	}

	var (
		order      *models.Order
		payment    *models.Payment
		deductions []StockDeduction
		cartID     string
	)

	txErr := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		// VALIDATING
		cart, err := s.Carts.FindCheckoutByUser(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("lecture panier: %w", err)
		}
		if cart == nil || cart.Status != models.CartStatusCheckout {
			return newError(CodeCartNotFound, "Aucun panier en cours de checkout")
		}
		if !cart.CheckoutExpiry.IsZero() && now.After(cart.CheckoutExpiry) {
			return newError(CodeCheckoutExpired, "La session de checkout a expiré")
		}
		cartID = cart.ID

		addr, err := s.resolveAddress(ctx, req)
		if err != nil {
			return err
		}

		lines, queued, err := s.resolveLines(ctx, cart, req.Items)
		if err != nil {
			return err
		}
		deductions = queued

		// RESERVING — seul contrôle de stock qui fait foi
		if err := s.reserveStock(ctx, deductions); err != nil {
			return err
		}

		// Consommation du coupon appliqué au panier, s'il y en a un
		subtotalMinor, _ := lineTotals(lines)
		var discount float64
		var couponCode string
		if cart.Coupon != nil && cart.Coupon.Code != "" {
			discount, err = s.consumeCoupon(ctx, req.UserID, cart.Coupon.Code, fromMinor(subtotalMinor), now)
			if err != nil {
				return err
			}
			couponCode = cart.Coupon.Code
		}

		// PRICING — paramètres de livraison lus une fois par requête
		shipping, err := s.Settings.GetShipping(ctx)
		if err != nil {
			return fmt.Errorf("lecture paramètres livraison: %w", err)
		}
		quote := computeQuote(lines, discount, shipping, now)

		// PERSISTING
		order, payment = buildOrder(req, lines, quote, couponCode, *addr, now)
		return s.persistOrder(ctx, cart, order, payment)
	})
	if txErr != nil {
		// Double soumission concurrente de la même clé : l'index unique a
		// tranché, on rejoue la commande gagnante
		if errors.Is(txErr, ErrIdempotencyConflict) {
			existing, pay, err := s.Orders.FindByIdempotencyKey(ctx, req.IdempotencyKey)
			if err == nil && existing != nil {
				log.Printf("🔁 Rejeu idempotent après conflit d'insertion (clé %s)", req.IdempotencyKey)
				return &PlaceOrderResult{Order: existing, Payment: pay, Idempotent: true}, nil
			}
		}
		return nil, txErr
	}

	// COMMITTED — plus rien ne peut être annulé par le store lui-même
	log.Printf("✅ Commande %s committée (%.2f€, %s)", order.OrderNumber, order.AmountTotal, payment.Method)
	if s.Events != nil {
		s.Events.OrderPlaced(order)
	}

	result := &PlaceOrderResult{Order: order, Payment: payment}
	if req.PaymentMethod == models.PaymentMethodCOD {
		return result, nil
	}

	// Round-trip passerelle, borné dans le temps
	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.GatewayTimeout)
	defer cancel()
	redirect, err := s.Gateway.Initiate(gctx, order, payment)
	if err != nil {
		log.Printf("❌ Passerelle en échec pour %s: %v — état %s", order.OrderNumber, err, stateGatewayFailed)
		s.compensate(context.WithoutCancel(ctx), order, deductions, cartID)
		return nil, &Error{
			Code:           CodeGatewayFailed,
			Message:        "Le paiement n'a pas pu être initié, la commande a été annulée — aucun débit n'a eu lieu",
			OrderCancelled: true,
		}
	}

	if err := s.Orders.SetPaymentGatewayRef(ctx, order.ID, redirect.PaymentIntentID); err != nil {
		log.Printf("⚠️ Référence passerelle non persistée pour %s: %v", order.OrderNumber, err)
	}
	payment.GatewayRef = redirect.PaymentIntentID
	log.Printf("💳 Paiement initié pour %s (%s) — état %s", order.OrderNumber, redirect.PaymentIntentID, stateGatewayOK)
	result.Redirect = redirect
	return result, nil
}

// compensate déroule le chemin inverse après un échec passerelle post-commit :
// commande annulée, paiement en échec, chaque décrémentation de stock
// restituée exactement une fois, panier laissé payable. Les échecs de
// compensation sont journalisés critiques pour escalade opérateur et ne sont
// jamais retentés automatiquement.
func (s *Service) compensate(ctx context.Context, order *models.Order, deductions []StockDeduction, cartID string) {
	log.Printf("⏪ Compensation de %s — état %s", order.OrderNumber, stateCompensating)
	failures := 0

	if err := s.Orders.MarkCancelled(ctx, order.ID); err != nil {
		failures++
		log.Printf("🚨 CRITIQUE: annulation commande %s impossible: %v", order.OrderNumber, err)
	}
	if err := s.Orders.MarkPaymentFailed(ctx, order.ID); err != nil {
		failures++
		log.Printf("🚨 CRITIQUE: paiement de %s non marqué en échec: %v", order.OrderNumber, err)
	}
	failures += s.releaseStock(ctx, deductions)
	if cartID != "" {
		if err := s.Carts.DetachOrder(ctx, cartID); err != nil {
			failures++
			log.Printf("🚨 CRITIQUE: panier %s non restitué: %v", cartID, err)
		}
	}

	if failures > 0 {
		log.Printf("🚨 CRITIQUE: compensation de %s incomplète (%d échec(s)) — intervention opérateur requise", order.OrderNumber, failures)
		return
	}
	log.Printf("✅ Compensation de %s terminée — état %s", order.OrderNumber, stateCompensated)
}
