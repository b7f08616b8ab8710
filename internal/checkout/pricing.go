package checkout

import (
	"math"
	"time"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// L'arithmétique monétaire se fait en centimes (int64) : les montants ne sont
// jamais accumulés en flottant d'une étape à l'autre, on ne convertit qu'aux
// frontières (prix catalogue en entrée, persistance en sortie).

func toMinor(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromMinor(m int64) float64 {
	return float64(m) / 100
}

// RoundMoney arrondit au centime, appliqué à tout montant persisté
func RoundMoney(v float64) float64 {
	return fromMinor(toMinor(v))
}

// Quote - Totaux finalisés d'une commande
type Quote struct {
	Subtotal   float64
	Total      float64
	Discount   float64
	Shipping   float64
	GrandTotal float64
	ComputedAt time.Time
}

// lineTotals retourne (sous-total, total) en centimes.
// Sous-total = Σ prix régulier × qté ; total = Σ prix unitaire × qté, le prix
// unitaire reflétant déjà paliers de quantité et prix bundle.
func lineTotals(lines []ResolvedLine) (subtotal, total int64) {
	for _, l := range lines {
		subtotal += toMinor(l.RegularPrice) * int64(l.Quantity)
		total += toMinor(l.UnitPrice) * int64(l.Quantity)
	}
	return subtotal, total
}

// computeQuote finalise les totaux : livraison offerte à partir du seuil
// (comparé au total, pas au sous-total), remise déjà validée par le Coupon
// Ledger, grand total plancher à zéro.
func computeQuote(lines []ResolvedLine, discount float64, shipping models.ShippingSettings, now time.Time) Quote {
	subtotal, total := lineTotals(lines)

	var shippingMinor int64
	if fromMinor(total) < shipping.FreeShippingThreshold {
		shippingMinor = toMinor(shipping.ShippingCost)
	}

	discountMinor := toMinor(discount)
	grand := total + shippingMinor - discountMinor
	if grand < 0 {
		grand = 0
	}

	return Quote{
		Subtotal:   fromMinor(subtotal),
		Total:      fromMinor(total),
		Discount:   fromMinor(discountMinor),
		Shipping:   fromMinor(shippingMinor),
		GrandTotal: fromMinor(grand),
		ComputedAt: now,
	}
}
