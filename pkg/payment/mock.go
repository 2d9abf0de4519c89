package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

type mockIntent struct {
	amount    int64
	paymentID string
}

// MockGateway approves every payment unless an outcome error is set. No money moves.
// Confirming the same client secret twice returns the same payment id.
type MockGateway struct {
	mu       sync.Mutex
	currency string
	intents  map[string]*mockIntent
	outcome  error
	logger   *zap.Logger
}

func NewMockGateway(currency string, logger *zap.Logger) *MockGateway {
	return &MockGateway{
		currency: currency,
		intents:  make(map[string]*mockIntent),
		logger:   global.LoggerOrNop(logger),
	}
}

// SetOutcome makes every following confirmation fail with err; nil restores approvals
func (g *MockGateway) SetOutcome(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outcome = err
}

func (g *MockGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amountMinor <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", amountMinor)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	secret := "mock_client_secret_" + uuid.NewString()
	g.intents[secret] = &mockIntent{amount: amountMinor}
	g.logger.Debug("created mock payment intent", zap.Int64("amount", amountMinor))

	return &Intent{ClientSecret: secret, Amount: amountMinor, Currency: g.currency}, nil
}

func (g *MockGateway) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[clientSecret]
	if !ok {
		return "", fmt.Errorf("unknown payment intent")
	}
	if intent.paymentID != "" {
		return intent.paymentID, nil
	}
	if g.outcome != nil {
		return "", g.outcome
	}

	intent.paymentID = "mock_payment_intent_" + uuid.NewString()
	g.logger.Info("mock payment captured",
		zap.String("payment_id", intent.paymentID),
		zap.String("method", paymentMethod),
		zap.Int64("amount", intent.amount))
	return intent.paymentID, nil
}

func (g *MockGateway) CapturedPayment(ctx context.Context, clientSecret string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[clientSecret]
	if !ok {
		return "", fmt.Errorf("unknown payment intent")
	}
	return intent.paymentID, nil
}

// AmountFor reports the amount an intent was created for
func (g *MockGateway) AmountFor(clientSecret string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if intent, ok := g.intents[clientSecret]; ok {
		return intent.amount, true
	}
	return 0, false
}
