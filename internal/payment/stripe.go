package payment

import (
	"context"
	"log"
	"math"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/checkout"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// StripeGateway - Crée un PaymentIntent Stripe pour une commande déjà
// committée. L'appel se fait hors transaction : en cas d'échec l'appelant
// compense la commande, Stripe ne doit donc jamais être considéré comme
// acquis avant la confirmation webhook.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Initiate(ctx context.Context, order *models.Order, pay *models.Payment) (*checkout.GatewayRedirect, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(int64(math.Round(pay.Amount * 100))),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":        order.ID.Hex(),
			"order_number":    order.OrderNumber,
			"user_id":         order.UserID,
			"idempotency_key": order.IdempotencyKey,
		},
	}
	params.SetIdempotencyKey(order.IdempotencyKey)

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe pour %s: %v", order.OrderNumber, err)
		return nil, err
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f€) pour commande %s", intent.ID, pay.Amount, order.OrderNumber)

	return &checkout.GatewayRedirect{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}
