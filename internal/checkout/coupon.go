package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Coupon Ledger : deux couches. (a) des pré-contrôles d'éligibilité non
// atomiques (fenêtre d'activité, minimum panier, historique de commandes) ;
// (b) une seule update conditionnelle qui revalide les prédicats numériques
// et incrémente used_count dans la même opération. Les contrôles (a) basés
// sur l'historique ne sont pas revalidés atomiquement avec l'incrément :
// fenêtre TOCTOU étroite assumée (voir DESIGN.md).

// checkEligibility exécute la couche (a). subtotal en euros.
func (s *Service) checkEligibility(ctx context.Context, coupon *models.Coupon, userID string, subtotal float64, now time.Time) error {
	if !coupon.IsActive || now.Before(coupon.StartsAt) {
		return newError(CodeCouponInactive, "Ce coupon n'est pas actif")
	}
	if now.After(coupon.ExpiresAt) {
		return newError(CodeCouponExpired, "Ce coupon a expiré")
	}
	if subtotal < coupon.MinCartValue {
		return &Error{
			Code:         CodeMinCartNotMet,
			Message:      fmt.Sprintf("Montant minimum requis: %.2f€", coupon.MinCartValue),
			MinCartValue: coupon.MinCartValue,
		}
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return newError(CodeCouponExhausted, "Ce coupon a atteint sa limite d'utilisation")
	}
	if coupon.NewUserOnly {
		paid, err := s.Orders.CountPaidByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("comptage commandes payées: %w", err)
		}
		if paid > 0 {
			return newError(CodeNotFirstOrder, "Ce coupon est réservé à la première commande")
		}
	}
	if coupon.PerUserLimit > 0 {
		used, err := s.Orders.CountByUserAndCoupon(ctx, userID, coupon.Code)
		if err != nil {
			return fmt.Errorf("comptage utilisations coupon: %w", err)
		}
		if used >= int64(coupon.PerUserLimit) {
			return newError(CodePerUserLimitReached, "Vous avez déjà utilisé ce coupon le nombre maximum de fois")
		}
	}
	return nil
}

// consumeCoupon valide puis consomme le coupon du panier. La remise est
// calculée sur le document post-incrément renvoyé par l'update atomique.
func (s *Service) consumeCoupon(ctx context.Context, userID, code string, subtotal float64, now time.Time) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.Coupons.FindByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("lecture coupon %s: %w", code, err)
	}
	if coupon == nil {
		return 0, newError(CodeInvalidCoupon, "Code coupon invalide")
	}
	if err := s.checkEligibility(ctx, coupon, userID, subtotal, now); err != nil {
		return 0, err
	}

	consumed, err := s.Coupons.Consume(ctx, code, subtotal, now)
	if err != nil {
		return 0, fmt.Errorf("consommation coupon %s: %w", code, err)
	}
	if consumed == nil {
		// Le prédicat atomique a refusé : l'état a bougé depuis la couche (a).
		// On relit pour rendre le code d'erreur précis, défaut = épuisé.
		if current, err := s.Coupons.FindByCode(ctx, code); err == nil && current != nil {
			if eligErr := s.checkEligibility(ctx, current, userID, subtotal, now); eligErr != nil {
				return 0, eligErr
			}
		}
		return 0, &Error{Code: CodeCouponExhausted, Message: "Ce coupon vient d'atteindre sa limite d'utilisation", Race: true}
	}

	return couponDiscount(consumed, subtotal), nil
}

// couponDiscount : flat plafonné au sous-total ; percentage plafonné au
// sous-total et à max_discount si défini
func couponDiscount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = subtotal * coupon.Value / 100
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	default: // flat
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return RoundMoney(discount)
}

// ValidateCoupon - Pré-validation douce pour l'UI panier (couche (a) seule,
// ne consomme rien ; la vérité reste le consume atomique à la commande)
func (s *Service) ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) models.CouponValidation {
	code = strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.Coupons.FindByCode(ctx, code)
	if err != nil || coupon == nil {
		return models.CouponValidation{IsValid: false, ErrorCode: CodeInvalidCoupon, ErrorMessage: "Code coupon invalide"}
	}
	if err := s.checkEligibility(ctx, coupon, userID, cartTotal, s.now()); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return models.CouponValidation{IsValid: false, ErrorCode: ce.Code, ErrorMessage: ce.Message}
		}
		return models.CouponValidation{IsValid: false, ErrorCode: CodeInvalidCoupon, ErrorMessage: "Erreur de validation"}
	}
	return models.CouponValidation{
		IsValid:  true,
		Discount: couponDiscount(coupon, cartTotal),
		Type:     coupon.Type,
		Code:     coupon.Code,
	}
}
