package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/payment"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

type memoryOrders struct {
	mu      sync.Mutex
	orders  []models.Order
	failing bool
}

func (m *memoryOrders) Insert(_ context.Context, order *models.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", errors.New("order collection unavailable")
	}
	stored := *order
	stored.ID = fmt.Sprintf("order-%d", len(m.orders)+1)
	m.orders = append(m.orders, stored)
	return stored.ID, nil
}

func (m *memoryOrders) FindByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

// countingGateway records calls so scenarios can assert the gateway was never reached
type countingGateway struct {
	*payment.MockGateway
	calls int
}

func (g *countingGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64) (*payment.Intent, error) {
	g.calls++
	return g.MockGateway.CreatePaymentIntent(ctx, amountMinor)
}

func (g *countingGateway) ConfirmPayment(ctx context.Context, clientSecret, method string) (string, error) {
	g.calls++
	return g.MockGateway.ConfirmPayment(ctx, clientSecret, method)
}

type signedIn map[string]models.Identity

func (s signedIn) Current(_ context.Context, token string) (*models.Identity, error) {
	if identity, ok := s[token]; ok {
		return &identity, nil
	}
	return nil, nil
}

type checkoutTestContext struct {
	ctx        context.Context
	sessionID  string
	token      string
	identities signedIn
	sessions   *cart.Sessions
	gateway    *countingGateway
	repo       *memoryOrders
	store      *orders.Store
	orch       *checkout.Orchestrator
	totals     pricing.Totals
	attempt    *checkout.Attempt
	result     *checkout.Result
	history    []models.Order
	err        error
}

func (c *checkoutTestContext) reset() {
	c.ctx = context.Background()
	c.token = ""
	c.identities = signedIn{}
	c.sessions = cart.NewSessions(cart.NewMemoryStorage(), nil)
	c.gateway = &countingGateway{MockGateway: payment.NewMockGateway("usd", nil)}
	c.repo = &memoryOrders{}
	c.store = orders.NewStore(c.repo, nil)
	c.orch = checkout.NewOrchestrator(checkout.Deps{
		Carts:      c.sessions,
		Identities: c.identities,
		Gateway:    c.gateway,
		Orders:     c.store,
		Ledger:     checkout.NewMemoryLedger(),
		Shipping:   pricing.DefaultShippingPolicy(),
	})
	c.attempt = nil
	c.result = nil
	c.history = nil
	c.err = nil
}

func (c *checkoutTestContext) currentCart() *cart.Store {
	store, _ := c.sessions.Open(c.ctx, c.sessionID)
	return store
}

func (c *checkoutTestContext) aShopperWithCartSession(sessionID string) error {
	c.sessionID = sessionID
	return nil
}

func (c *checkoutTestContext) theShopperIsSignedInAs(userID string) error {
	c.token = "token-" + userID
	c.identities[c.token] = models.Identity{UserID: userID, DisplayName: userID}
	return nil
}

func (c *checkoutTestContext) theCartHoldsOfProductPricedWithPercentOff(qty int, id string, price float64, discount int) error {
	product := models.Product{ID: id, Name: "Product " + id, Price: price}
	if discount > 0 {
		product.Discount = models.IntPtr(discount)
	}
	return c.currentCart().AddToCart(c.ctx, product, qty)
}

func (c *checkoutTestContext) theCartHoldsOfProductPriced(qty int, id string, price float64) error {
	return c.theCartHoldsOfProductPricedWithPercentOff(qty, id, price, 0)
}

func (c *checkoutTestContext) theCardWillBeDeclined() error {
	c.gateway.SetOutcome(fmt.Errorf("card_declined: %w", payment.ErrDeclined))
	return nil
}

func (c *checkoutTestContext) theOrderStoreIsUnavailable() error {
	c.repo.failing = true
	return nil
}

func (c *checkoutTestContext) theOrderStoreRecovers() error {
	c.repo.failing = false
	return nil
}

func (c *checkoutTestContext) placedOrdersInThatOrder(userID, first, second, third string) error {
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{first, second, third} {
		c.repo.orders = append(c.repo.orders, models.Order{ID: id, UserID: userID, OrderDate: base.Add(time.Duration(i) * time.Hour)})
	}
	return nil
}

func (c *checkoutTestContext) theShopperQuotesTheCart() error {
	c.totals, c.err = c.orch.QuoteSession(c.ctx, c.sessionID)
	return nil
}

func (c *checkoutTestContext) theShopperStartsCheckout() error {
	c.attempt, c.err = c.orch.Begin(c.ctx, checkout.BeginRequest{SessionID: c.sessionID, Token: c.token})
	return nil
}

func (c *checkoutTestContext) theShopperConfirmsPayment() error {
	if c.attempt == nil {
		return fmt.Errorf("checkout was not started: %v", c.err)
	}
	c.result, c.err = c.orch.Confirm(c.ctx, checkout.ConfirmRequest{
		SessionID:       c.sessionID,
		Token:           c.token,
		ClientSecret:    c.attempt.ClientSecret,
		PaymentMethod:   "Credit Card",
		ShippingAddress: models.ShippingAddress{FullName: "Ada", AddressLine1: "1 Main St", City: "Toronto", State: "ON", PostalCode: "M5V", Country: "CA"},
	})
	return nil
}

func (c *checkoutTestContext) theShopperRetriesFinalizingTheOrder() error {
	paymentID := apperr.Field(c.err, "payment_id")
	c.result, c.err = c.orch.Finalize(c.ctx, checkout.FinalizeRequest{
		SessionID:       c.sessionID,
		Token:           c.token,
		PaymentID:       paymentID,
		PaymentMethod:   "Credit Card",
		ShippingAddress: models.ShippingAddress{FullName: "Ada", AddressLine1: "1 Main St", City: "Toronto", State: "ON", PostalCode: "M5V", Country: "CA"},
	})
	return nil
}

func (c *checkoutTestContext) theShopperListsTheirOrders() error {
	userID := c.identities[c.token].UserID
	c.history, c.err = c.store.GetUserOrders(c.ctx, userID)
	return nil
}

func (c *checkoutTestContext) theCartHasItemsTotalling(count int, total float64) error {
	store := c.currentCart()
	if store.TotalItems() != count {
		return fmt.Errorf("expected %d items, got %d", count, store.TotalItems())
	}
	if !closeTo(store.TotalPrice(), total) {
		return fmt.Errorf("expected total %.2f, got %.2f", total, store.TotalPrice())
	}
	return nil
}

func (c *checkoutTestContext) theShippingCostIs(amount float64) error {
	if !closeTo(c.totals.ShippingCost, amount) {
		return fmt.Errorf("expected shipping %.2f, got %.2f", amount, c.totals.ShippingCost)
	}
	return nil
}

func (c *checkoutTestContext) theOrderTotalIs(amount float64) error {
	if !closeTo(c.totals.Total, amount) {
		return fmt.Errorf("expected total %.2f, got %.2f", amount, c.totals.Total)
	}
	return nil
}

func (c *checkoutTestContext) checkoutFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected checkout to fail but it succeeded")
	}
	if got := apperr.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected kind %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theErrorCarriesThePaymentID() error {
	if !strings.HasPrefix(apperr.Field(c.err, "payment_id"), "mock_payment_intent_") {
		return fmt.Errorf("expected payment id on error, got %q", apperr.Field(c.err, "payment_id"))
	}
	return nil
}

func (c *checkoutTestContext) thePaymentGatewayWasNotUsed() error {
	if c.gateway.calls != 0 {
		return fmt.Errorf("expected no gateway calls, got %d", c.gateway.calls)
	}
	return nil
}

func (c *checkoutTestContext) theCardWasNotCharged() error {
	if c.attempt == nil {
		return errors.New("checkout was not started")
	}
	paymentID, err := c.gateway.CapturedPayment(c.ctx, c.attempt.ClientSecret)
	if err != nil {
		return err
	}
	if paymentID != "" {
		return fmt.Errorf("expected no capture, got payment %s", paymentID)
	}
	return nil
}

func (c *checkoutTestContext) noOrderWasWritten() error {
	if len(c.repo.orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(c.repo.orders))
	}
	return nil
}

func (c *checkoutTestContext) anOrderWasWrittenFor(userID string) error {
	if c.err != nil {
		return fmt.Errorf("expected success but got %v", c.err)
	}
	if len(c.repo.orders) != 1 {
		return fmt.Errorf("expected exactly one order, got %d", len(c.repo.orders))
	}
	order := c.repo.orders[0]
	if order.UserID != userID || order.ID != c.result.OrderID {
		return fmt.Errorf("unexpected order %+v", order)
	}
	if order.Status != models.OrderStatusCompleted || !order.Reconciles() {
		return fmt.Errorf("order is not a reconciled completed order: %+v", order)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if !c.currentCart().IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d items", c.currentCart().TotalItems())
	}
	return nil
}

func (c *checkoutTestContext) theOrdersAreListedAs(first, second, third string) error {
	want := []string{first, second, third}
	if len(c.history) != len(want) {
		return fmt.Errorf("expected %d orders, got %d", len(want), len(c.history))
	}
	for i, id := range want {
		if c.history[i].ID != id {
			return fmt.Errorf("position %d: expected %s, got %s", i, id, c.history[i].ID)
		}
	}
	return nil
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a shopper with cart session "([^"]*)"$`, tc.aShopperWithCartSession)
	ctx.Step(`^the shopper is signed in as "([^"]*)"$`, tc.theShopperIsSignedInAs)
	ctx.Step(`^the cart holds (\d+) of product "([^"]*)" priced (\d+\.\d+) with (\d+) percent off$`, tc.theCartHoldsOfProductPricedWithPercentOff)
	ctx.Step(`^the cart holds (\d+) of product "([^"]*)" priced (\d+\.\d+)$`, tc.theCartHoldsOfProductPriced)
	ctx.Step(`^the card will be declined$`, tc.theCardWillBeDeclined)
	ctx.Step(`^the order store is unavailable$`, tc.theOrderStoreIsUnavailable)
	ctx.Step(`^"([^"]*)" placed orders "([^"]*)", "([^"]*)" and "([^"]*)" in that order$`, tc.placedOrdersInThatOrder)

	// When steps
	ctx.Step(`^the shopper quotes the cart$`, tc.theShopperQuotesTheCart)
	ctx.Step(`^the shopper starts checkout$`, tc.theShopperStartsCheckout)
	ctx.Step(`^the shopper confirms payment$`, tc.theShopperConfirmsPayment)
	ctx.Step(`^the order store recovers$`, tc.theOrderStoreRecovers)
	ctx.Step(`^the shopper retries finalizing the order$`, tc.theShopperRetriesFinalizingTheOrder)
	ctx.Step(`^the shopper lists their orders$`, tc.theShopperListsTheirOrders)

	// Then steps
	ctx.Step(`^the cart has (\d+) items totalling (\d+\.\d+)$`, tc.theCartHasItemsTotalling)
	ctx.Step(`^the shipping cost is (\d+\.\d+)$`, tc.theShippingCostIs)
	ctx.Step(`^the order total is (\d+\.\d+)$`, tc.theOrderTotalIs)
	ctx.Step(`^checkout fails with "([^"]*)"$`, tc.checkoutFailsWith)
	ctx.Step(`^the error carries the payment id$`, tc.theErrorCarriesThePaymentID)
	ctx.Step(`^the payment gateway was not used$`, tc.thePaymentGatewayWasNotUsed)
	ctx.Step(`^the card was not charged$`, tc.theCardWasNotCharged)
	ctx.Step(`^no order was written$`, tc.noOrderWasWritten)
	ctx.Step(`^an order was written for "([^"]*)"$`, tc.anOrderWasWrittenFor)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the orders are listed as "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.theOrdersAreListedAs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
