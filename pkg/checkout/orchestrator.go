package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/events"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/payment"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

const (
	publishTimeout  = 5 * time.Second
	captureAttempts = 3
)

// Carts finds cart stores; Existing returns nil for a session that holds nothing
type Carts interface {
	Existing(ctx context.Context, sessionID string) (*cart.Store, error)
}

// Identities resolves a session token; nil means nobody is signed in
type Identities interface {
	Current(ctx context.Context, token string) (*models.Identity, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, in orders.CreateOrderInput) (string, error)
}

type Deps struct {
	Carts      Carts
	Identities Identities
	Gateway    payment.Gateway
	Orders     OrderCreator
	Ledger     Ledger
	Publisher  events.Publisher
	Shipping   pricing.ShippingPolicy
	Logger     *zap.Logger
}

type BeginRequest struct {
	SessionID string
	Token     string
}

// Attempt is a checkout waiting for the shopper to confirm payment
type Attempt struct {
	State        State          `json:"state"`
	ClientSecret string         `json:"clientSecret"`
	AmountMinor  int64          `json:"amountMinor"`
	Currency     string         `json:"currency"`
	Totals       pricing.Totals `json:"totals"`
}

type ConfirmRequest struct {
	SessionID       string
	Token           string
	ClientSecret    string
	PaymentMethod   string
	ShippingAddress models.ShippingAddress
}

// FinalizeRequest retries order creation for a payment that was captured but never became an order
type FinalizeRequest struct {
	SessionID       string
	Token           string
	PaymentID       string
	ClientSecret    string
	PaymentMethod   string
	ShippingAddress models.ShippingAddress
}

type Result struct {
	State     State          `json:"state"`
	OrderID   string         `json:"orderId"`
	PaymentID string         `json:"paymentId"`
	Totals    pricing.Totals `json:"totals"`
	Replayed  bool           `json:"replayed,omitempty"`
}

// Orchestrator drives a cart through payment into a persisted order.
// Purchased lines leave the cart only after the order has been written.
type Orchestrator struct {
	carts      Carts
	identities Identities
	gateway    payment.Gateway
	orders     OrderCreator
	ledger     Ledger
	publisher  events.Publisher
	shipping   pricing.ShippingPolicy
	logger     *zap.Logger
	locks      *keyedMutex
	retryDelay time.Duration
	now        func() time.Time
}

func NewOrchestrator(deps Deps) *Orchestrator {
	o := &Orchestrator{
		carts:      deps.Carts,
		identities: deps.Identities,
		gateway:    deps.Gateway,
		orders:     deps.Orders,
		ledger:     deps.Ledger,
		publisher:  deps.Publisher,
		shipping:   deps.Shipping,
		logger:     global.LoggerOrNop(deps.Logger),
		locks:      newKeyedMutex(),
		retryDelay: 100 * time.Millisecond,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if o.ledger == nil {
		o.ledger = NewMemoryLedger()
	}
	if o.publisher == nil {
		o.publisher = events.NopPublisher{}
	}
	return o
}

// Quote prices the given lines with the configured shipping policy
func (o *Orchestrator) Quote(items []models.CartItem) pricing.Totals {
	return pricing.Compute(items, o.shipping)
}

func (o *Orchestrator) QuoteSession(ctx context.Context, sessionID string) (pricing.Totals, error) {
	store, err := o.carts.Existing(ctx, sessionID)
	if err != nil {
		return pricing.Totals{}, err
	}
	if store == nil {
		return o.Quote(nil), nil
	}
	return o.Quote(store.Items()), nil
}

// Begin requests a payment intent for the cart total and records what was quoted under the client secret
func (o *Orchestrator) Begin(ctx context.Context, req BeginRequest) (*Attempt, error) {
	store, identity, err := o.preconditions(ctx, req.SessionID, req.Token)
	if err != nil {
		return nil, err
	}

	items := store.Items()
	totals := o.Quote(items)
	amount := pricing.MinorUnits(totals.Total)

	intent, err := o.gateway.CreatePaymentIntent(ctx, amount)
	if err != nil {
		o.logger.Warn("payment intent failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, paymentError(err)
	}

	record := IntentRecord{
		ClientSecret: intent.ClientSecret,
		UserID:       identity.UserID,
		SessionID:    store.Key(),
		AmountMinor:  intent.Amount,
		Items:        items,
		CreatedAt:    o.now(),
	}
	if err := o.ledger.Intended(ctx, record); err != nil {
		o.logger.Error("failed to record payment intent", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindTransient, "checkout could not be started", err)
	}

	return &Attempt{
		State:        StatePaying,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.Amount,
		Currency:     intent.Currency,
		Totals:       totals,
	}, nil
}

// Confirm charges the intent only while the cart still matches what Begin quoted, then persists the order
// from that snapshot and settles the purchased lines out of the cart
func (o *Orchestrator) Confirm(ctx context.Context, req ConfirmRequest) (*Result, error) {
	store, identity, err := o.preconditions(ctx, req.SessionID, req.Token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ClientSecret) == "" {
		return nil, apperr.New(apperr.KindValidation, "client secret is required").With("field", "clientSecret")
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	intent, err := o.ledger.IntentFor(ctx, req.ClientSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to read payment intent", err)
	}
	if intent == nil || intent.UserID != identity.UserID || intent.SessionID != store.Key() {
		return nil, apperr.New(apperr.KindValidation, "payment was not started for this cart, start checkout again").
			With("field", "clientSecret")
	}
	if current := store.Items(); !sameLines(current, intent.Items) || pricing.MinorUnits(o.Quote(current).Total) != intent.AmountMinor {
		o.logger.Info("cart changed after checkout began", zap.String("user_id", identity.UserID), zap.String("cart", store.Key()))
		return nil, apperr.New(apperr.KindConflict, "cart changed since checkout began, start checkout again").
			With("amount_minor", strconv.FormatInt(intent.AmountMinor, 10))
	}

	paymentID, err := o.gateway.ConfirmPayment(ctx, req.ClientSecret, req.PaymentMethod)
	if err != nil {
		o.logger.Info("payment not completed", zap.String("user_id", identity.UserID), zap.Error(err))
		return nil, paymentError(err)
	}

	unlock := o.locks.Lock(paymentID)
	defer unlock()

	entry, err := o.ledger.Lookup(ctx, paymentID)
	if err != nil {
		o.logger.Error("payment ledger read failed", zap.String("payment_id", paymentID), zap.Error(err))
	}
	if entry != nil && entry.OrderID != "" {
		return &Result{State: StateOrderPersisted, OrderID: entry.OrderID, PaymentID: paymentID, Replayed: true}, nil
	}

	var recordErr error
	if entry == nil {
		recordErr = o.recordCapture(ctx, capturedEntry(paymentID, intent, o.now()))
	}

	result, ferr := o.finalize(ctx, identity, intent.SessionID, paymentID, intent.Items, req.PaymentMethod, req.ShippingAddress)
	if ferr != nil {
		if recordErr != nil {
			// nothing remembers this payment; the client secret is the only way back to it
			return nil, ferr.With("ledger", "unrecorded")
		}
		return nil, ferr
	}
	return result, nil
}

// Finalize retries the order write for a payment that was captured by this user, from the lines that were
// charged. A payment missing from the ledger is recovered through its client secret when the gateway
// confirms the capture. A payment that already produced an order returns that order without writing again.
func (o *Orchestrator) Finalize(ctx context.Context, req FinalizeRequest) (*Result, error) {
	identity, err := o.requireIdentity(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		return nil, apperr.New(apperr.KindValidation, "payment id is required").With("field", "paymentId")
	}

	unlock := o.locks.Lock(req.PaymentID)
	defer unlock()

	entry, err := o.ledger.Lookup(ctx, req.PaymentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to read payment ledger", err).With("payment_id", req.PaymentID)
	}
	if entry == nil && strings.TrimSpace(req.ClientSecret) != "" {
		if entry, err = o.recoverCapture(ctx, identity, req); err != nil {
			return nil, err
		}
	}
	if entry == nil || entry.UserID != identity.UserID {
		return nil, apperr.New(apperr.KindNotFound, "no captured payment with that id").With("payment_id", req.PaymentID)
	}
	if entry.OrderID != "" {
		return &Result{State: StateOrderPersisted, OrderID: entry.OrderID, PaymentID: req.PaymentID, Replayed: true}, nil
	}
	if len(entry.Items) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no purchased items recorded for that payment").With("payment_id", req.PaymentID)
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	sessionID := entry.SessionID
	if sessionID == "" {
		sessionID = req.SessionID
	}
	result, ferr := o.finalize(ctx, identity, sessionID, req.PaymentID, entry.Items, req.PaymentMethod, req.ShippingAddress)
	if ferr != nil {
		return nil, ferr
	}
	return result, nil
}

// recoverCapture rebuilds a ledger entry from the intent when the gateway reports the payment as captured
func (o *Orchestrator) recoverCapture(ctx context.Context, identity *models.Identity, req FinalizeRequest) (*LedgerEntry, error) {
	intent, err := o.ledger.IntentFor(ctx, req.ClientSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to read payment intent", err)
	}
	if intent == nil || intent.UserID != identity.UserID {
		return nil, nil
	}

	paymentID, err := o.gateway.CapturedPayment(ctx, req.ClientSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "payment gateway unavailable", err)
	}
	if paymentID == "" || paymentID != req.PaymentID {
		return nil, nil
	}

	entry := capturedEntry(paymentID, intent, o.now())
	if err := o.ledger.Captured(ctx, entry); err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to record captured payment", err).With("payment_id", paymentID)
	}
	o.logger.Info("recovered captured payment from its intent", zap.String("payment_id", paymentID), zap.String("user_id", identity.UserID))
	return &entry, nil
}

// recordCapture retries the ledger write a few times; a captured payment the ledger never saw can only be
// recovered through its client secret
func (o *Orchestrator) recordCapture(ctx context.Context, entry LedgerEntry) error {
	var err error
	for attempt := 1; attempt <= captureAttempts; attempt++ {
		if err = o.ledger.Captured(ctx, entry); err == nil {
			return nil
		}
		o.logger.Warn("failed to record captured payment",
			zap.String("payment_id", entry.PaymentID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == captureAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.retryDelay):
		}
	}
	o.logger.Error("captured payment is not in the ledger", zap.String("payment_id", entry.PaymentID), zap.Error(err))
	return err
}

// finalize must be called with the payment id lock held. It writes the order for exactly the charged lines.
func (o *Orchestrator) finalize(ctx context.Context, identity *models.Identity, sessionID, paymentID string, items []models.CartItem, method string, address models.ShippingAddress) (*Result, *apperr.Error) {
	totals := o.Quote(items)

	orderID, err := o.orders.CreateOrder(ctx, orders.CreateOrderInput{
		UserID:          identity.UserID,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		PaymentID:       paymentID,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Discount:        totals.Discount,
		Total:           totals.Total,
	})
	if err != nil {
		o.logger.Error("payment captured but order was not saved",
			zap.String("payment_id", paymentID),
			zap.String("user_id", identity.UserID),
			zap.Error(err))
		return nil, apperr.Wrap(apperr.KindOrderPersistence, "payment succeeded but the order could not be saved", err).
			With("payment_id", paymentID)
	}

	if err := o.ledger.Ordered(ctx, paymentID, orderID); err != nil {
		o.logger.Error("failed to record order for payment",
			zap.String("payment_id", paymentID),
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	o.settle(ctx, sessionID, items)
	o.publish(ctx, events.OrderPlaced{
		OrderID:   orderID,
		UserID:    identity.UserID,
		PaymentID: paymentID,
		ItemCount: countUnits(items),
		Total:     totals.Total,
		PlacedAt:  o.now(),
	})

	return &Result{State: StateOrderPersisted, OrderID: orderID, PaymentID: paymentID, Totals: totals}, nil
}

// settle takes the purchased quantities out of the cart. Lines added after the purchase stay.
func (o *Orchestrator) settle(ctx context.Context, sessionID string, items []models.CartItem) {
	if sessionID == "" {
		return
	}
	store, err := o.carts.Existing(ctx, sessionID)
	if err != nil || store == nil {
		o.logger.Warn("no cart to settle after order", zap.String("cart", sessionID), zap.Error(err))
		return
	}
	for _, item := range items {
		store.UpdateQuantity(ctx, item.Product.ID, store.Quantity(item.Product.ID)-item.Quantity)
	}
}

func (o *Orchestrator) preconditions(ctx context.Context, sessionID, token string) (*cart.Store, *models.Identity, error) {
	store, err := o.carts.Existing(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if store == nil || store.IsEmpty() {
		return nil, nil, apperr.New(apperr.KindValidation, "cart is empty")
	}
	identity, err := o.requireIdentity(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	return store, identity, nil
}

func (o *Orchestrator) requireIdentity(ctx context.Context, token string) (*models.Identity, error) {
	identity, err := o.identities.Current(ctx, token)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperr.New(apperr.KindAuthRequired, "sign in to check out")
	}
	return identity, nil
}

func (o *Orchestrator) publish(ctx context.Context, event events.OrderPlaced) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := o.publisher.PublishOrderPlaced(ctx, event); err != nil {
		o.logger.Warn("order event not published", zap.String("order_id", event.OrderID), zap.Error(err))
	}
}

func paymentError(err error) error {
	switch {
	case errors.Is(err, payment.ErrDeclined):
		return apperr.Wrap(apperr.KindPaymentDeclined, "payment was declined", err)
	case errors.Is(err, payment.ErrCancelled):
		return apperr.Wrap(apperr.KindPaymentCancelled, "payment was cancelled", err)
	case errors.Is(err, payment.ErrPopupBlocked):
		return apperr.Wrap(apperr.KindPopupBlocked, "payment window was blocked", err)
	default:
		return apperr.Wrap(apperr.KindTransient, "payment gateway unavailable", err)
	}
}

func validateAddress(a models.ShippingAddress) error {
	required := []struct {
		field string
		value string
	}{
		{"fullName", a.FullName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperr.Newf(apperr.KindValidation, "shipping address %s is required", r.field).With("field", r.field)
		}
	}
	return nil
}

func capturedEntry(paymentID string, intent *IntentRecord, at time.Time) LedgerEntry {
	return LedgerEntry{
		PaymentID:    paymentID,
		UserID:       intent.UserID,
		SessionID:    intent.SessionID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.AmountMinor,
		Items:        intent.Items,
		CapturedAt:   at,
	}
}

// sameLines reports whether both carts hold the same products in the same quantities, ignoring order
func sameLines(a, b []models.CartItem) bool {
	if len(a) != len(b) {
		return false
	}
	quantities := make(map[string]int, len(a))
	for _, item := range a {
		quantities[item.Product.ID] += item.Quantity
	}
	for _, item := range b {
		quantities[item.Product.ID] -= item.Quantity
	}
	for _, q := range quantities {
		if q != 0 {
			return false
		}
	}
	return true
}

func countUnits(items []models.CartItem) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
