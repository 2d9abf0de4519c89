package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGatewayApproves(t *testing.T) {
	gateway := NewMockGateway("usd", nil)
	ctx := context.Background()

	intent, err := gateway.CreatePaymentIntent(ctx, 16000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ClientSecret, "mock_client_secret_"))
	assert.Equal(t, int64(16000), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)

	paymentID, err := gateway.ConfirmPayment(ctx, intent.ClientSecret, "Credit Card")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paymentID, "mock_payment_intent_"))

	again, err := gateway.ConfirmPayment(ctx, intent.ClientSecret, "Credit Card")
	require.NoError(t, err)
	assert.Equal(t, paymentID, again)

	amount, ok := gateway.AmountFor(intent.ClientSecret)
	assert.True(t, ok)
	assert.Equal(t, int64(16000), amount)
}

func TestMockGatewayOutcome(t *testing.T) {
	gateway := NewMockGateway("usd", nil)
	ctx := context.Background()
	intent, err := gateway.CreatePaymentIntent(ctx, 500)
	require.NoError(t, err)

	gateway.SetOutcome(fmt.Errorf("card_declined: %w", ErrDeclined))
	_, err = gateway.ConfirmPayment(ctx, intent.ClientSecret, "Credit Card")
	assert.True(t, errors.Is(err, ErrDeclined))

	gateway.SetOutcome(nil)
	_, err = gateway.ConfirmPayment(ctx, intent.ClientSecret, "Credit Card")
	assert.NoError(t, err)
}

func TestMockGatewayRejectsBadInput(t *testing.T) {
	gateway := NewMockGateway("usd", nil)
	ctx := context.Background()

	_, err := gateway.CreatePaymentIntent(ctx, 0)
	assert.Error(t, err)

	_, err = gateway.ConfirmPayment(ctx, "mock_client_secret_unknown", "Credit Card")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = gateway.CreatePaymentIntent(cancelled, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockGatewayCapturedPaymentDoesNotCharge(t *testing.T) {
	gateway := NewMockGateway("usd", nil)
	ctx := context.Background()
	intent, err := gateway.CreatePaymentIntent(ctx, 900)
	require.NoError(t, err)

	captured, err := gateway.CapturedPayment(ctx, intent.ClientSecret)
	require.NoError(t, err)
	assert.Empty(t, captured)

	paymentID, err := gateway.ConfirmPayment(ctx, intent.ClientSecret, "Credit Card")
	require.NoError(t, err)

	captured, err = gateway.CapturedPayment(ctx, intent.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, paymentID, captured)

	_, err = gateway.CapturedPayment(ctx, "mock_client_secret_unknown")
	assert.Error(t, err)
}
