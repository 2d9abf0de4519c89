package payment

import (
	"context"
	"errors"
)

var (
	ErrDeclined     = errors.New("payment declined")
	ErrCancelled    = errors.New("payment cancelled")
	ErrPopupBlocked = errors.New("payment window blocked")
)

// Intent is a gateway-side authorization for an amount in minor currency units
type Intent struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Gateway is the card processor. ConfirmPayment returns the payment identifier of a captured payment,
// or one of ErrDeclined, ErrCancelled, ErrPopupBlocked (possibly wrapped). Confirming a secret that was
// already captured returns the same identifier. CapturedPayment looks the identifier up without charging,
// and returns "" when the intent was never captured.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64) (*Intent, error)
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (string, error)
	CapturedPayment(ctx context.Context, clientSecret string) (string, error)
}
