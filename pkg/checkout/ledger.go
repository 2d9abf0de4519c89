package checkout

import (
	"context"
	"sync"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// IntentRecord is what Begin quoted for a client secret. Confirm charges it only while the cart still matches.
type IntentRecord struct {
	ClientSecret string            `json:"clientSecret"`
	UserID       string            `json:"userId"`
	SessionID    string            `json:"sessionId"`
	AmountMinor  int64             `json:"amountMinor"`
	Items        []models.CartItem `json:"items"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// LedgerEntry ties a captured payment to its owner, the lines it paid for and, once persisted, the resulting order
type LedgerEntry struct {
	PaymentID    string
	UserID       string
	SessionID    string
	ClientSecret string
	AmountMinor  int64
	Items        []models.CartItem
	OrderID      string
	CapturedAt   time.Time
}

// Ledger remembers quoted intents and captured payments so that an order is built from what was charged
// and finalized at most once per payment. Lookup and IntentFor return nil and no error for unknown ids.
type Ledger interface {
	Intended(ctx context.Context, record IntentRecord) error
	IntentFor(ctx context.Context, clientSecret string) (*IntentRecord, error)
	Captured(ctx context.Context, entry LedgerEntry) error
	Lookup(ctx context.Context, paymentID string) (*LedgerEntry, error)
	Ordered(ctx context.Context, paymentID, orderID string) error
}

type MemoryLedger struct {
	mu      sync.Mutex
	intents map[string]IntentRecord
	entries map[string]LedgerEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		intents: make(map[string]IntentRecord),
		entries: make(map[string]LedgerEntry),
	}
}

func (l *MemoryLedger) Intended(_ context.Context, record IntentRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intents[record.ClientSecret] = record
	return nil
}

func (l *MemoryLedger) IntentFor(_ context.Context, clientSecret string) (*IntentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if record, ok := l.intents[clientSecret]; ok {
		return &record, nil
	}
	return nil, nil
}

func (l *MemoryLedger) Captured(_ context.Context, entry LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.entries[entry.PaymentID]; ok {
		entry.OrderID = existing.OrderID
	}
	l.entries[entry.PaymentID] = entry
	return nil
}

func (l *MemoryLedger) Lookup(_ context.Context, paymentID string) (*LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.entries[paymentID]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (l *MemoryLedger) Ordered(_ context.Context, paymentID, orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.entries[paymentID]
	entry.PaymentID = paymentID
	entry.OrderID = orderID
	l.entries[paymentID] = entry
	return nil
}

// keyedMutex serializes work per key and frees idle keys
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
