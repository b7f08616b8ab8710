package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

func simpleProduct(id, sku string, price float64, available int) *models.Product {
	return &models.Product{
		ID:        id,
		SKU:       sku,
		Type:      models.ProductTypeSimple,
		Title:     "Produit " + id,
		Price:     price,
		Available: available,
		Stock:     available,
		IsActive:  true,
	}
}

func checkoutCart(userID string, items ...models.CartItem) *models.Cart {
	return &models.Cart{
		ID:             "cart-" + userID,
		UserID:         userID,
		Items:          items,
		Status:         models.CartStatusCheckout,
		CheckoutExpiry: testNow.Add(10 * time.Minute),
	}
}

func TestResolveLinesSimple(t *testing.T) {
	env := newTestEnv([]*models.Product{simpleProduct("p1", "SKU-1", 29.90, 10)}, nil, nil)
	cart := checkoutCart("u1")

	lines, deductions, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "p1", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 29.90, lines[0].UnitPrice)
	assert.Equal(t, 29.90, lines[0].RegularPrice)
	assert.Equal(t, "Produit p1", lines[0].Title)

	require.Len(t, deductions, 1)
	assert.Equal(t, DeductSimple, deductions[0].Kind)
	assert.Equal(t, "p1", deductions[0].ProductID)
	assert.Equal(t, 2, deductions[0].Quantity)
}

func TestResolveLinesCartSnapshotWins(t *testing.T) {
	env := newTestEnv([]*models.Product{simpleProduct("p1", "SKU-1", 29.90, 10)}, nil, nil)
	cart := checkoutCart("u1", models.CartItem{ProductID: "p1", Quantity: 2, Title: "Titre figé au panier", Image: "old.jpg"})

	lines, _, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "p1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Titre figé au panier", lines[0].Title)
	assert.Equal(t, "old.jpg", lines[0].Image)
}

func TestResolveLinesPriceTiers(t *testing.T) {
	p := simpleProduct("p1", "SKU-1", 10, 100)
	p.PriceTiers = []models.PriceTier{{MinQty: 5, UnitPrice: 9}, {MinQty: 10, UnitPrice: 8}}
	env := newTestEnv([]*models.Product{p}, nil, nil)

	lines, _, err := env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "p1", Quantity: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, lines[0].UnitPrice)
	assert.Equal(t, 10.0, lines[0].RegularPrice)
}

func TestResolveLinesProductErrors(t *testing.T) {
	inactive := simpleProduct("p2", "SKU-2", 10, 5)
	inactive.IsActive = false
	choiceGroup := &models.Product{ID: "cg1", Type: models.ProductTypeChoiceGroup, IsActive: true}
	env := newTestEnv([]*models.Product{inactive, choiceGroup}, nil, nil)
	cart := checkoutCart("u1")

	_, _, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{{ProductID: "absent", Quantity: 1}})
	assertCheckoutError(t, err, CodeProductNotFound)

	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{{ProductID: "p2", Quantity: 1}})
	assertCheckoutError(t, err, CodeProductNotFound)

	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{{ProductID: "cg1", Quantity: 1}})
	assertCheckoutError(t, err, CodeProductNotOrderable)
}

func TestResolveLinesOutOfStockAdvisory(t *testing.T) {
	env := newTestEnv([]*models.Product{simpleProduct("p1", "SKU-1", 10, 3)}, nil, nil)

	_, _, err := env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "p1", Quantity: 4},
	})
	ce := assertCheckoutError(t, err, CodeOutOfStock)
	assert.Equal(t, 3, ce.Available)
	assert.Equal(t, 4, ce.Requested)
	assert.False(t, ce.Race)
}

func configurableProduct() *models.Product {
	return &models.Product{
		ID:       "conf1",
		SKU:      "CONF-1",
		Type:     models.ProductTypeConfigurable,
		Title:    "Body bébé",
		IsActive: true,
		Variants: []models.Variant{
			{SKU: "CONF-1-S", Price: 19.90, Available: 5, Attributes: map[string]string{"size": "S"}, IsActive: true},
			{SKU: "CONF-1-M", Price: 19.90, OfferPrice: 15.90, Available: 2, Attributes: map[string]string{"size": "M"}, IsActive: true},
			{SKU: "CONF-1-L", Price: 21.90, Available: 9, IsActive: false},
		},
	}
}

func TestResolveLinesVariant(t *testing.T) {
	env := newTestEnv([]*models.Product{configurableProduct()}, nil, nil)
	cart := checkoutCart("u1")

	lines, deductions, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "conf1", VariantSKU: "CONF-1-M", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.90, lines[0].UnitPrice)
	assert.Equal(t, 19.90, lines[0].RegularPrice)
	assert.Equal(t, "M", lines[0].Attributes["size"])

	require.Len(t, deductions, 1)
	assert.Equal(t, DeductVariant, deductions[0].Kind)
	assert.Equal(t, "CONF-1-M", deductions[0].SKU)
}

func TestResolveLinesVariantErrors(t *testing.T) {
	env := newTestEnv([]*models.Product{configurableProduct()}, nil, nil)
	cart := checkoutCart("u1")

	// SKU obligatoire pour un produit configurable
	_, _, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "conf1", Quantity: 1},
	})
	assertCheckoutError(t, err, CodeVariantNotFound)

	// SKU inconnu
	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "conf1", VariantSKU: "CONF-1-XXL", Quantity: 1},
	})
	assertCheckoutError(t, err, CodeVariantNotFound)

	// Variante désactivée = introuvable
	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "conf1", VariantSKU: "CONF-1-L", Quantity: 1},
	})
	assertCheckoutError(t, err, CodeVariantNotFound)
}

func TestResolveBundleDerivedStock(t *testing.T) {
	bundle := &models.Product{
		ID:       "b1",
		SKU:      "BUNDLE-1",
		Type:     models.ProductTypeBundle,
		Title:    "Coffret naissance",
		Price:    49.90,
		IsActive: true,
		BundleConfig: []models.BundleItem{
			{ChildSKU: "CHILD-A", QtyPerBundle: 2},
			{ChildSKU: "CHILD-B", QtyPerBundle: 1},
		},
	}
	childA := simpleProduct("ca", "CHILD-A", 5, 10)
	childB := simpleProduct("cb", "CHILD-B", 8, 3)
	env := newTestEnv([]*models.Product{bundle, childA, childB}, nil, nil)

	// Stock dérivé = min(floor(10/2), floor(3/1)) = 3
	lines, deductions, err := env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "b1", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 49.90, lines[0].UnitPrice)

	require.Len(t, deductions, 2)
	assert.Equal(t, DeductBundleChild, deductions[0].Kind)
	assert.Equal(t, "ca", deductions[0].ProductID)
	assert.Equal(t, 6, deductions[0].Quantity) // 2 par bundle × 3
	assert.Equal(t, "cb", deductions[1].ProductID)
	assert.Equal(t, 3, deductions[1].Quantity)

	// Une unité de plus que le stock dérivé
	_, _, err = env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "b1", Quantity: 4},
	})
	ce := assertCheckoutError(t, err, CodeOutOfStock)
	assert.Equal(t, 3, ce.Available)
}

func TestResolveBundleMissingChild(t *testing.T) {
	bundle := &models.Product{
		ID:       "b1",
		Type:     models.ProductTypeBundle,
		Price:    49.90,
		IsActive: true,
		BundleConfig: []models.BundleItem{
			{ChildSKU: "CHILD-A", QtyPerBundle: 1},
			{ChildSKU: "FANTOME", QtyPerBundle: 1},
		},
	}
	childA := simpleProduct("ca", "CHILD-A", 5, 10)
	env := newTestEnv([]*models.Product{bundle, childA}, nil, nil)

	// Enfant introuvable → contribution 0 → bundle indisponible
	_, _, err := env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "b1", Quantity: 1},
	})
	ce := assertCheckoutError(t, err, CodeOutOfStock)
	assert.Equal(t, 0, ce.Available)
}

func TestResolveGift(t *testing.T) {
	host := simpleProduct("p1", "SKU-1", 30, 10)
	host.GiftSlot = &models.GiftSlot{Enabled: true, SKUs: []string{"GIFT-1"}}
	gift := simpleProduct("g1", "GIFT-1", 4.90, 5)
	env := newTestEnv([]*models.Product{host, gift}, nil, nil)

	lines, deductions, err := env.svc.resolveLines(context.Background(), checkoutCart("u1"), []RequestItem{
		{ProductID: "p1", Quantity: 2, GiftSKU: "GIFT-1"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	giftLine := lines[1]
	assert.True(t, giftLine.IsGift)
	assert.Equal(t, 0.0, giftLine.UnitPrice)
	assert.Equal(t, 0.0, giftLine.RegularPrice)
	assert.Equal(t, 2, giftLine.Quantity)
	assert.Equal(t, "GIFT-1", giftLine.GiftSKU)

	// Le cadeau consomme bien du stock même s'il est offert
	require.Len(t, deductions, 2)
	assert.Equal(t, DeductGift, deductions[1].Kind)
	assert.Equal(t, "g1", deductions[1].ProductID)
	assert.Equal(t, 2, deductions[1].Quantity)
}

func TestResolveGiftErrors(t *testing.T) {
	noSlot := simpleProduct("p1", "SKU-1", 30, 10)
	withSlot := simpleProduct("p2", "SKU-2", 30, 10)
	withSlot.GiftSlot = &models.GiftSlot{Enabled: true, SKUs: []string{"GIFT-1"}}
	gift := simpleProduct("g1", "GIFT-1", 4.90, 1)
	env := newTestEnv([]*models.Product{noSlot, withSlot, gift}, nil, nil)
	cart := checkoutCart("u1")

	// Pas de slot cadeau configuré
	_, _, err := env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "p1", Quantity: 1, GiftSKU: "GIFT-1"},
	})
	assertCheckoutError(t, err, CodeGiftNotAvailable)

	// SKU hors de la liste configurée
	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "p2", Quantity: 1, GiftSKU: "AUTRE"},
	})
	assertCheckoutError(t, err, CodeGiftNotAvailable)

	// Stock cadeau insuffisant
	_, _, err = env.svc.resolveLines(context.Background(), cart, []RequestItem{
		{ProductID: "p2", Quantity: 2, GiftSKU: "GIFT-1"},
	})
	assertCheckoutError(t, err, CodeOutOfStock)
}

func assertCheckoutError(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var ce *Error
	require.True(t, errors.As(err, &ce), "erreur inattendue: %v", err)
	assert.Equal(t, code, ce.Code)
	return ce
}
