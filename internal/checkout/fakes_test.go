package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
)

// Doubles en mémoire des collaborateurs de la saga. Le runner de transaction
// snapshotte l'état mutable avant fn et le restaure si fn échoue, pour
// reproduire la sémantique "aucune écriture partielle ne survit" du store réel.

type fakeProducts struct {
	mu         sync.Mutex
	byID       map[string]*models.Product
	released   []StockDeduction
	reserveErr error
	releaseErr error
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{byID: make(map[string]*models.Product)}
	for _, p := range products {
		f.byID[p.ID] = p
	}
	return f
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Variants = append([]models.Variant(nil), p.Variants...)
	cp.PriceTiers = append([]models.PriceTier(nil), p.PriceTiers...)
	cp.BundleConfig = append([]models.BundleItem(nil), p.BundleConfig...)
	return &cp
}

func (f *fakeProducts) snapshot() map[string]*models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]*models.Product, len(f.byID))
	for id, p := range f.byID {
		snap[id] = cloneProduct(p)
	}
	return snap
}

func (f *fakeProducts) restore(snap map[string]*models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = snap
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (f *fakeProducts) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) Reserve(_ context.Context, d StockDeduction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return false, f.reserveErr
	}
	p, ok := f.byID[d.ProductID]
	if !ok {
		return false, nil
	}
	if d.Kind == DeductVariant {
		for i := range p.Variants {
			if p.Variants[i].SKU == d.SKU {
				if p.Variants[i].Available < d.Quantity {
					return false, nil
				}
				p.Variants[i].Available -= d.Quantity
				return true, nil
			}
		}
		return false, nil
	}
	if p.Available < d.Quantity {
		return false, nil
	}
	p.Available -= d.Quantity
	p.Stock = p.Available
	return true, nil
}

func (f *fakeProducts) Release(_ context.Context, d StockDeduction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, d)
	p, ok := f.byID[d.ProductID]
	if !ok {
		return errors.New("produit inconnu")
	}
	if d.Kind == DeductVariant {
		for i := range p.Variants {
			if p.Variants[i].SKU == d.SKU {
				p.Variants[i].Available += d.Quantity
				return nil
			}
		}
		return errors.New("variante inconnue")
	}
	p.Available += d.Quantity
	p.Stock = p.Available
	return nil
}

func (f *fakeProducts) available(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Available
}

func (f *fakeProducts) variantAvailable(id, sku string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID[id].Variants {
		if v.SKU == sku {
			return v.Available
		}
	}
	return -1
}

type fakeCoupons struct {
	mu     sync.Mutex
	byCode map[string]*models.Coupon
	// consumeRefused force un refus du prédicat atomique même si la couche
	// d'éligibilité vient de passer (simulation de course perdue)
	consumeRefused bool
}

func newFakeCoupons(coupons ...*models.Coupon) *fakeCoupons {
	f := &fakeCoupons{byCode: make(map[string]*models.Coupon)}
	for _, c := range coupons {
		f.byCode[c.Code] = c
	}
	return f
}

func (f *fakeCoupons) snapshot() map[string]*models.Coupon {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]*models.Coupon, len(f.byCode))
	for code, c := range f.byCode {
		cp := *c
		snap[code] = &cp
	}
	return snap
}

func (f *fakeCoupons) restore(snap map[string]*models.Coupon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byCode = snap
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byCode[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCoupons) Consume(_ context.Context, code string, subtotal float64, now time.Time) (*models.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeRefused {
		return nil, nil
	}
	c, ok := f.byCode[code]
	if !ok {
		return nil, nil
	}
	if !c.IsActive || now.Before(c.StartsAt) || now.After(c.ExpiresAt) {
		return nil, nil
	}
	if subtotal < c.MinCartValue {
		return nil, nil
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return nil, nil
	}
	c.UsedCount++
	cp := *c
	return &cp, nil
}

func (f *fakeCoupons) usedCount(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCode[code].UsedCount
}

type storedOrder struct {
	order   *models.Order
	payment *models.Payment
}

type fakeOrders struct {
	mu         sync.Mutex
	byKey      map[string]*storedOrder
	paidByUser map[string]int64
	couponUses map[string]int64 // userID|code
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		byKey:      make(map[string]*storedOrder),
		paidByUser: make(map[string]int64),
		couponUses: make(map[string]int64),
	}
}

func (f *fakeOrders) snapshot() map[string]*storedOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]*storedOrder, len(f.byKey))
	for k, v := range f.byKey {
		o := *v.order
		p := *v.payment
		snap[k] = &storedOrder{order: &o, payment: &p}
	}
	return snap
}

func (f *fakeOrders) restore(snap map[string]*storedOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byKey = snap
}

func (f *fakeOrders) FindByIdempotencyKey(_ context.Context, key string) (*models.Order, *models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byKey[key]
	if !ok {
		return nil, nil, nil
	}
	o := *s.order
	p := *s.payment
	return &o, &p, nil
}

func (f *fakeOrders) Insert(_ context.Context, order *models.Order, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byKey[order.IdempotencyKey]; exists {
		return ErrIdempotencyConflict
	}
	o := *order
	p := *payment
	f.byKey[order.IdempotencyKey] = &storedOrder{order: &o, payment: &p}
	return nil
}

func (f *fakeOrders) find(orderID primitive.ObjectID) *storedOrder {
	for _, s := range f.byKey {
		if s.order.ID == orderID {
			return s
		}
	}
	return nil
}

func (f *fakeOrders) MarkCancelled(_ context.Context, orderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(orderID)
	if s == nil {
		return errors.New("commande inconnue")
	}
	s.order.Status = models.OrderStatusCancelled
	return nil
}

func (f *fakeOrders) MarkPaymentFailed(_ context.Context, orderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(orderID)
	if s == nil {
		return errors.New("commande inconnue")
	}
	s.payment.Status = models.PaymentStatusFailed
	return nil
}

func (f *fakeOrders) SetPaymentGatewayRef(_ context.Context, orderID primitive.ObjectID, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.find(orderID)
	if s == nil {
		return errors.New("commande inconnue")
	}
	s.payment.GatewayRef = ref
	return nil
}

func (f *fakeOrders) CountPaidByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paidByUser[userID], nil
}

func (f *fakeOrders) CountByUserAndCoupon(_ context.Context, userID, code string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.couponUses[userID+"|"+code], nil
}

func (f *fakeOrders) get(key string) *storedOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byKey[key]
}

type fakeCarts struct {
	mu     sync.Mutex
	byUser map[string]*models.Cart
}

func newFakeCarts(carts ...*models.Cart) *fakeCarts {
	f := &fakeCarts{byUser: make(map[string]*models.Cart)}
	for _, c := range carts {
		f.byUser[c.UserID] = c
	}
	return f
}

func (f *fakeCarts) snapshot() map[string]*models.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]*models.Cart, len(f.byUser))
	for u, c := range f.byUser {
		cp := *c
		cp.Items = append([]models.CartItem(nil), c.Items...)
		snap[u] = &cp
	}
	return snap
}

func (f *fakeCarts) restore(snap map[string]*models.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser = snap
}

func (f *fakeCarts) FindCheckoutByUser(_ context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byUser[userID]
	if !ok || c.Status != models.CartStatusCheckout {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCarts) findByID(cartID string) *models.Cart {
	for _, c := range f.byUser {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (f *fakeCarts) MarkOrdered(_ context.Context, cartID string, orderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.findByID(cartID)
	if c == nil {
		return errors.New("panier inconnu")
	}
	c.Status = models.CartStatusOrdered
	c.OrderID = orderID.Hex()
	return nil
}

func (f *fakeCarts) AttachOrder(_ context.Context, cartID string, orderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.findByID(cartID)
	if c == nil {
		return errors.New("panier inconnu")
	}
	c.OrderID = orderID.Hex()
	return nil
}

func (f *fakeCarts) DetachOrder(_ context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.findByID(cartID)
	if c == nil {
		return errors.New("panier inconnu")
	}
	c.OrderID = ""
	return nil
}

func (f *fakeCarts) status(cartID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findByID(cartID).Status
}

func (f *fakeCarts) orderID(cartID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findByID(cartID).OrderID
}

type fakeAddresses struct {
	mu   sync.Mutex
	byID map[string]*models.Address
}

func newFakeAddresses(addrs ...*models.Address) *fakeAddresses {
	f := &fakeAddresses{byID: make(map[string]*models.Address)}
	for _, a := range addrs {
		f.byID[a.ID.Hex()] = a
	}
	return f
}

func (f *fakeAddresses) FindByID(_ context.Context, userID, addressID string) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[addressID]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddresses) Insert(_ context.Context, addr *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *addr
	f.byID[addr.ID.Hex()] = &cp
	return nil
}

type fakeSettings struct {
	settings models.ShippingSettings
	err      error
}

func (f *fakeSettings) GetShipping(context.Context) (models.ShippingSettings, error) {
	return f.settings, f.err
}

// fakeTx sérialise les transactions et restaure l'état snapshotté quand fn
// échoue : aucune écriture partielle ne survit, comme avec le store réel.
type fakeTx struct {
	mu       sync.Mutex
	products *fakeProducts
	coupons  *fakeCoupons
	orders   *fakeOrders
	carts    *fakeCarts
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prodSnap := f.products.snapshot()
	couponSnap := f.coupons.snapshot()
	orderSnap := f.orders.snapshot()
	cartSnap := f.carts.snapshot()

	if err := fn(ctx); err != nil {
		f.products.restore(prodSnap)
		f.coupons.restore(couponSnap)
		f.orders.restore(orderSnap)
		f.carts.restore(cartSnap)
		return err
	}
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	err      error
	redirect *GatewayRedirect
}

func (f *fakeGateway) Initiate(_ context.Context, order *models.Order, _ *models.Payment) (*GatewayRedirect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.redirect != nil {
		return f.redirect, nil
	}
	return &GatewayRedirect{PaymentIntentID: "pi_" + order.OrderNumber, ClientSecret: "secret"}, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSink struct {
	mu     sync.Mutex
	placed []string
}

func (f *fakeSink) OrderPlaced(order *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, order.OrderNumber)
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

// --- Fixture standard ---

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	products *fakeProducts
	coupons  *fakeCoupons
	orders   *fakeOrders
	carts    *fakeCarts
	addrs    *fakeAddresses
	gateway  *fakeGateway
	sink     *fakeSink
}

func newTestEnv(products []*models.Product, carts []*models.Cart, coupons []*models.Coupon) *testEnv {
	env := &testEnv{
		products: newFakeProducts(products...),
		coupons:  newFakeCoupons(coupons...),
		orders:   newFakeOrders(),
		carts:    newFakeCarts(carts...),
		addrs:    newFakeAddresses(),
		gateway:  &fakeGateway{},
		sink:     &fakeSink{},
	}
	env.svc = NewService(Service{
		Products:  env.products,
		Coupons:   env.coupons,
		Orders:    env.orders,
		Carts:     env.carts,
		Addresses: env.addrs,
		Settings:  &fakeSettings{settings: models.ShippingSettings{FreeShippingThreshold: 50, ShippingCost: 5.99}},
		Tx: &fakeTx{
			products: env.products,
			coupons:  env.coupons,
			orders:   env.orders,
			carts:    env.carts,
		},
		Gateway: env.gateway,
		Events:  env.sink,
		Now:     func() time.Time { return testNow },
	})
	return env
}
