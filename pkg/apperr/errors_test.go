package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	base := New(KindPaymentDeclined, "card declined")
	wrapped := fmt.Errorf("checkout: %w", base)

	assert.Equal(t, KindPaymentDeclined, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindPaymentDeclined))
	assert.False(t, Is(wrapped, KindOrderPersistence))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindTransient, "failed to load products", cause)

	assert.Equal(t, "failed to load products: connection reset", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestFieldLookup(t *testing.T) {
	err := Wrap(KindOrderPersistence, "order not saved", errors.New("write timeout")).With("payment_id", "pi_1")

	assert.Equal(t, "pi_1", Field(fmt.Errorf("outer: %w", err), "payment_id"))
	assert.Empty(t, Field(err, "missing"))
	assert.Empty(t, Field(errors.New("plain"), "payment_id"))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "ORDER_PERSISTENCE", KindOrderPersistence.String())
	assert.Equal(t, "AUTH_REQUIRED", KindAuthRequired.String())
	assert.Equal(t, "INTERNAL", Kind(99).String())
}
