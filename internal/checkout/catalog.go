package checkout

import (
	"context"
	"fmt"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Catalog Reader : résout chaque ligne demandée en (prix régulier, prix
// unitaire, stock disponible) et met en file les décrémentations de stock à
// exécuter. Tout est en lecture seule — les contrôles de stock faits ici sont
// purement indicatifs, la vérification qui fait foi est la réservation
// atomique (inventory.go).

// resolveUnitPrice applique l'éventuel prix promo puis le palier de quantité
// le plus élevé dont le seuil est atteint
func resolveUnitPrice(base, offer float64, tiers []models.PriceTier, qty int) float64 {
	price := base
	if offer > 0 && offer < price {
		price = offer
	}
	bestMin := 0
	for _, t := range tiers {
		if qty >= t.MinQty && t.MinQty > bestMin {
			bestMin = t.MinQty
			price = t.UnitPrice
		}
	}
	return price
}

func (s *Service) resolveLines(ctx context.Context, cart *models.Cart, items []RequestItem) ([]ResolvedLine, []StockDeduction, error) {
	lines := make([]ResolvedLine, 0, len(items))
	deductions := make([]StockDeduction, 0, len(items))

	for _, item := range items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("lecture produit %s: %w", item.ProductID, err)
		}
		if product == nil || !product.IsActive {
			return nil, nil, &Error{Code: CodeProductNotFound, Message: "Produit introuvable", ProductID: item.ProductID}
		}
		if product.Type == models.ProductTypeChoiceGroup {
			return nil, nil, &Error{Code: CodeProductNotOrderable, Message: "Ce produit ne peut pas être commandé directement", ProductID: item.ProductID}
		}

		line := ResolvedLine{
			ProductID:  product.ID,
			VariantSKU: item.VariantSKU,
			Quantity:   item.Quantity,
			Title:      product.Title,
			Image:      product.Image,
		}
		// Snapshot d'affichage figé à l'ajout au panier, prioritaire sur le catalogue vivant
		if ci := cart.FindItem(item.ProductID, item.VariantSKU); ci != nil && ci.Title != "" {
			line.Title = ci.Title
			line.Image = ci.Image
		}

		var available int

		switch product.Type {
		case models.ProductTypeConfigurable:
			if item.VariantSKU == "" {
				return nil, nil, &Error{Code: CodeVariantNotFound, Message: "Variante requise pour ce produit", ProductID: product.ID}
			}
			variant := product.FindVariant(item.VariantSKU)
			if variant == nil {
				return nil, nil, &Error{Code: CodeVariantNotFound, Message: "Variante introuvable", ProductID: product.ID, SKU: item.VariantSKU}
			}
			line.RegularPrice = variant.Price
			line.UnitPrice = resolveUnitPrice(variant.Price, variant.OfferPrice, product.PriceTiers, item.Quantity)
			line.Attributes = variant.Attributes
			available = variant.Available
			deductions = append(deductions, StockDeduction{Kind: DeductVariant, ProductID: product.ID, SKU: variant.SKU, Quantity: item.Quantity})

		case models.ProductTypeBundle:
			line.RegularPrice = product.Price
			line.UnitPrice = resolveUnitPrice(product.Price, product.OfferPrice, product.PriceTiers, item.Quantity)
			childDeductions, derived, err := s.resolveBundle(ctx, product, item.Quantity)
			if err != nil {
				return nil, nil, err
			}
			available = derived
			deductions = append(deductions, childDeductions...)

		default: // SIMPLE
			line.RegularPrice = product.Price
			line.UnitPrice = resolveUnitPrice(product.Price, product.OfferPrice, product.PriceTiers, item.Quantity)
			available = product.Available
			deductions = append(deductions, StockDeduction{Kind: DeductSimple, ProductID: product.ID, Quantity: item.Quantity})
		}

		if available < item.Quantity {
			return nil, nil, outOfStock(product.ID, item.VariantSKU, available, item.Quantity, false)
		}
		lines = append(lines, line)

		// Expansion du cadeau : ligne à prix nul + décrémentation cadeau
		if item.GiftSKU != "" {
			giftLine, giftDeduction, err := s.resolveGift(ctx, product, item)
			if err != nil {
				return nil, nil, err
			}
			lines = append(lines, *giftLine)
			deductions = append(deductions, *giftDeduction)
		}
	}

	return lines, deductions, nil
}

// resolveBundle calcule le stock dérivé du bundle :
// min sur les enfants de floor(stock_enfant / qty_per_bundle).
// Un SKU enfant introuvable force sa contribution à 0, rendant le bundle
// indisponible. Aucune écriture : la réservation des enfants a lieu au moment
// de la commande uniquement.
func (s *Service) resolveBundle(ctx context.Context, bundle *models.Product, qty int) ([]StockDeduction, int, error) {
	if len(bundle.BundleConfig) == 0 {
		return nil, 0, nil
	}

	derived := -1
	deductions := make([]StockDeduction, 0, len(bundle.BundleConfig))

	for _, child := range bundle.BundleConfig {
		if child.QtyPerBundle <= 0 {
			continue
		}
		childProduct, err := s.Products.FindBySKU(ctx, child.ChildSKU)
		if err != nil {
			return nil, 0, fmt.Errorf("lecture SKU enfant %s: %w", child.ChildSKU, err)
		}
		contribution := 0
		if childProduct != nil {
			contribution = childProduct.Available / child.QtyPerBundle
			deductions = append(deductions, StockDeduction{
				Kind:      DeductBundleChild,
				ProductID: childProduct.ID,
				SKU:       child.ChildSKU,
				Quantity:  child.QtyPerBundle * qty,
			})
		}
		if derived < 0 || contribution < derived {
			derived = contribution
		}
	}
	if derived < 0 {
		derived = 0
	}
	return deductions, derived, nil
}

// resolveGift valide le SKU cadeau choisi contre le slot configuré et
// synthétise la ligne offerte
func (s *Service) resolveGift(ctx context.Context, product *models.Product, item RequestItem) (*ResolvedLine, *StockDeduction, error) {
	slot := product.GiftSlot
	if slot == nil || !slot.Enabled {
		return nil, nil, &Error{Code: CodeGiftNotAvailable, Message: "Aucun cadeau proposé pour ce produit", ProductID: product.ID, SKU: item.GiftSKU}
	}
	configured := false
	for _, sku := range slot.SKUs {
		if sku == item.GiftSKU {
			configured = true
			break
		}
	}
	if !configured {
		return nil, nil, &Error{Code: CodeGiftNotAvailable, Message: "Ce cadeau n'est pas proposé pour ce produit", ProductID: product.ID, SKU: item.GiftSKU}
	}

	gift, err := s.Products.FindBySKU(ctx, item.GiftSKU)
	if err != nil {
		return nil, nil, fmt.Errorf("lecture produit cadeau %s: %w", item.GiftSKU, err)
	}
	if gift == nil {
		return nil, nil, &Error{Code: CodeGiftNotAvailable, Message: "Produit cadeau introuvable", ProductID: product.ID, SKU: item.GiftSKU}
	}
	if gift.Available < item.Quantity {
		return nil, nil, outOfStock(gift.ID, item.GiftSKU, gift.Available, item.Quantity, false)
	}

	line := &ResolvedLine{
		ProductID: gift.ID,
		GiftSKU:   item.GiftSKU,
		Title:     gift.Title,
		Image:     gift.Image,
		Quantity:  item.Quantity,
		IsGift:    true,
	}
	deduction := &StockDeduction{Kind: DeductGift, ProductID: gift.ID, SKU: item.GiftSKU, Quantity: item.Quantity}
	return line, deduction, nil
}
