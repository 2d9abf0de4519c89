package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
)

func TestSessionsReturnSameStore(t *testing.T) {
	sessions := NewSessions(NewMemoryStorage(), nil)
	ctx := context.Background()

	a, err := sessions.Open(ctx, "abc")
	require.NoError(t, err)
	b, err := sessions.Open(ctx, "abc")
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestSessionsRestoreFromStorage(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	sessions := NewSessions(storage, nil)

	store, err := sessions.Open(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, store.AddToCart(ctx, product("p1", 10), 2))

	sessions.Forget("abc")
	restored, err := sessions.Open(ctx, "abc")
	require.NoError(t, err)

	assert.NotSame(t, store, restored)
	assert.Equal(t, 2, restored.Quantity("p1"))
}

func TestSessionsRequireID(t *testing.T) {
	sessions := NewSessions(nil, nil)

	_, err := sessions.Open(context.Background(), "  ")

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NotEqual(t, sessions.NewSessionID(), sessions.NewSessionID())
}

func TestSessionsEvictIdleStores(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	sessions := NewSessions(storage, nil, WithIdleTimeout(30*time.Minute))
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }
	sessions.lastSweep = clock

	kept, err := sessions.Open(ctx, "kept")
	require.NoError(t, err)
	require.NoError(t, kept.AddToCart(ctx, product("p1", 10), 1))
	_, err = sessions.Open(ctx, "abandoned")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.Len())

	clock = clock.Add(20 * time.Minute)
	_, err = sessions.Open(ctx, "kept")
	require.NoError(t, err)

	clock = clock.Add(15 * time.Minute)
	again, err := sessions.Open(ctx, "kept")
	require.NoError(t, err)

	assert.Equal(t, 1, sessions.Len())
	assert.Same(t, kept, again)

	clock = clock.Add(time.Hour)
	reloaded, err := sessions.Open(ctx, "kept")
	require.NoError(t, err)

	assert.NotSame(t, kept, reloaded)
	assert.Equal(t, 1, reloaded.Quantity("p1"))
	assert.Equal(t, 1, sessions.Len())
}

func TestExistingDoesNotRegisterUnknownSessions(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	sessions := NewSessions(storage, nil)

	for i := 0; i < 50; i++ {
		store, err := sessions.Existing(ctx, sessions.NewSessionID())
		require.NoError(t, err)
		assert.Nil(t, store)
	}
	assert.Equal(t, 0, sessions.Len())

	storage.Put("saved", []byte(`[{"product":{"id":"p1","name":"Scarf","price":20},"quantity":3}]`))
	store, err := sessions.Existing(ctx, "saved")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, 3, store.Quantity("p1"))

	opened, err := sessions.Open(ctx, "saved")
	require.NoError(t, err)
	assert.Same(t, store, opened)
	assert.Equal(t, 1, sessions.Len())

	_, err = sessions.Existing(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
