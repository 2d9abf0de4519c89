package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func newTestServer(t *testing.T) (*miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, context.Background()
}

func TestCartStorageMissingKey(t *testing.T) {
	mr, ctx := newTestServer(t)
	storage := NewCartStorage(NewClient(mr.Addr(), ""), time.Hour)

	data, err := storage.Load(ctx, "nobody")

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCartStorageRoundTripThroughStore(t *testing.T) {
	mr, ctx := newTestServer(t)
	client := NewClient(mr.Addr(), "")
	storage := NewCartStorage(client, time.Hour)

	store := cart.NewStore(ctx, "s1", storage, nil)
	require.NoError(t, store.AddToCart(ctx, models.Product{ID: "p1", Name: "Lamp", Price: 25}, 2))
	require.NoError(t, store.AddToCart(ctx, models.Product{ID: "p2", Name: "Rug", Price: 80, Discount: models.IntPtr(10)}, 1))

	assert.True(t, mr.Exists("cart:s1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:s1"))

	reloaded := cart.NewStore(ctx, "s1", storage, nil)
	assert.Equal(t, store.Items(), reloaded.Items())
	assert.Equal(t, 122.00, reloaded.TotalPrice())
}

func TestCartStorageExpires(t *testing.T) {
	mr, ctx := newTestServer(t)
	storage := NewCartStorage(NewClient(mr.Addr(), ""), time.Minute)
	require.NoError(t, storage.Save(ctx, "s1", []byte("[]")))

	mr.FastForward(2 * time.Minute)

	data, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCartStorageServerDown(t *testing.T) {
	mr, ctx := newTestServer(t)
	storage := NewCartStorage(NewClient(mr.Addr(), ""), time.Minute)
	mr.Close()

	_, err := storage.Load(ctx, "s1")
	assert.Error(t, err)
	assert.Error(t, storage.Save(ctx, "s1", []byte("[]")))
}

func TestProductCache(t *testing.T) {
	mr, ctx := newTestServer(t)
	cache := NewProductCache(NewClient(mr.Addr(), ""), time.Hour)

	miss, err := cache.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	products := []models.Product{
		{ID: "p1", Name: "Headphones", Price: 199.99, Discount: models.IntPtr(20)},
		{ID: "p2", Name: "Watch", Price: 89.99},
	}
	require.NoError(t, cache.Set(ctx, products...))

	hit, err := cache.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, products[0], *hit)

	require.NoError(t, cache.Invalidate(ctx, "p1", "p2"))
	gone, err := cache.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSessionStore(t *testing.T) {
	mr, ctx := newTestServer(t)
	sessions := NewSessionStore(NewClient(mr.Addr(), ""))
	identity := models.Identity{UserID: "u1", DisplayName: "Ada", Email: "ada@example.com"}

	require.NoError(t, sessions.Put(ctx, "tok", identity, time.Hour))

	got, err := sessions.Get(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, identity, *got)

	require.NoError(t, sessions.Delete(ctx, "tok"))
	got, err = sessions.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLedger(t *testing.T) {
	mr, ctx := newTestServer(t)
	ledger := NewLedger(NewClient(mr.Addr(), ""), 24*time.Hour)
	captured := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entry, err := ledger.Lookup(ctx, "pay_1")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, ledger.Captured(ctx, checkout.LedgerEntry{
		PaymentID:    "pay_1",
		UserID:       "u1",
		SessionID:    "s1",
		ClientSecret: "secret_1",
		AmountMinor:  1500,
		Items:        []models.CartItem{{Product: models.Product{ID: "p1", Name: "Scarf", Price: 5}, Quantity: 1}},
		CapturedAt:   captured,
	}))
	entry, err = ledger.Lookup(ctx, "pay_1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "s1", entry.SessionID)
	assert.Equal(t, "secret_1", entry.ClientSecret)
	assert.Equal(t, int64(1500), entry.AmountMinor)
	require.Len(t, entry.Items, 1)
	assert.Equal(t, "p1", entry.Items[0].Product.ID)
	assert.Equal(t, 1, entry.Items[0].Quantity)
	assert.Empty(t, entry.OrderID)
	assert.True(t, captured.Equal(entry.CapturedAt))

	require.NoError(t, ledger.Ordered(ctx, "pay_1", "order-9"))
	entry, err = ledger.Lookup(ctx, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order-9", entry.OrderID)
	assert.Equal(t, 24*time.Hour, mr.TTL("checkout:payment:pay_1"))
}

func TestLedgerIntents(t *testing.T) {
	mr, ctx := newTestServer(t)
	ledger := NewLedger(NewClient(mr.Addr(), ""), time.Hour)

	record, err := ledger.IntentFor(ctx, "secret_1")
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, ledger.Intended(ctx, checkout.IntentRecord{
		ClientSecret: "secret_1",
		UserID:       "u1",
		SessionID:    "s1",
		AmountMinor:  1500,
		Items:        []models.CartItem{{Product: models.Product{ID: "p1", Name: "Scarf", Price: 5}, Quantity: 1}},
	}))

	record, err = ledger.IntentFor(ctx, "secret_1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "s1", record.SessionID)
	assert.Equal(t, int64(1500), record.AmountMinor)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "p1", record.Items[0].Product.ID)
	assert.Equal(t, time.Hour, mr.TTL("checkout:intent:secret_1"))
}
