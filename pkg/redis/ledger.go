package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Ledger records quoted intents as JSON under checkout:intent:{secret}, and captured payments with the
// order each one produced as hash checkout:payment:{id}
type Ledger struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewLedger(client *redisclient.Client, ttl time.Duration) *Ledger {
	return &Ledger{client: client, ttl: ttl}
}

func ledgerKey(paymentID string) string {
	return fmt.Sprintf("checkout:payment:%s", paymentID)
}

func intentKey(clientSecret string) string {
	return fmt.Sprintf("checkout:intent:%s", clientSecret)
}

func (l *Ledger) Intended(ctx context.Context, record checkout.IntentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal payment intent: %w", err)
	}
	if err := l.client.Set(ctx, intentKey(record.ClientSecret), data, l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record payment intent: %w", err)
	}
	return nil
}

// IntentFor returns nil and no error for an unknown or expired client secret
func (l *Ledger) IntentFor(ctx context.Context, clientSecret string) (*checkout.IntentRecord, error) {
	data, err := l.client.Get(ctx, intentKey(clientSecret)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payment intent: %w", err)
	}

	var record checkout.IntentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &record, nil
}

func (l *Ledger) Captured(ctx context.Context, entry checkout.LedgerEntry) error {
	items, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items for payment %s: %w", entry.PaymentID, err)
	}
	key := ledgerKey(entry.PaymentID)

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"payment_id":    entry.PaymentID,
		"user_id":       entry.UserID,
		"session_id":    entry.SessionID,
		"client_secret": entry.ClientSecret,
		"amount_minor":  entry.AmountMinor,
		"items":         string(items),
		"captured_at":   entry.CapturedAt.UTC().Format(time.RFC3339),
	})
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record captured payment %s: %w", entry.PaymentID, err)
	}
	return nil
}

// Lookup returns nil and no error when the payment id was never captured
func (l *Ledger) Lookup(ctx context.Context, paymentID string) (*checkout.LedgerEntry, error) {
	data, err := l.client.HGetAll(ctx, ledgerKey(paymentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read payment %s: %w", paymentID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	entry := &checkout.LedgerEntry{
		PaymentID:    data["payment_id"],
		UserID:       data["user_id"],
		SessionID:    data["session_id"],
		ClientSecret: data["client_secret"],
		OrderID:      data["order_id"],
	}
	if amount, ok := data["amount_minor"]; ok {
		if n, err := strconv.ParseInt(amount, 10, 64); err == nil {
			entry.AmountMinor = n
		}
	}
	if items, ok := data["items"]; ok && items != "" {
		var lines []models.CartItem
		if err := json.Unmarshal([]byte(items), &lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items for payment %s: %w", paymentID, err)
		}
		entry.Items = lines
	}
	if capturedAt, ok := data["captured_at"]; ok {
		if t, err := time.Parse(time.RFC3339, capturedAt); err == nil {
			entry.CapturedAt = t
		}
	}
	return entry, nil
}

func (l *Ledger) Ordered(ctx context.Context, paymentID, orderID string) error {
	if err := l.client.HSet(ctx, ledgerKey(paymentID), "order_id", orderID).Err(); err != nil {
		return fmt.Errorf("failed to record order %s for payment %s: %w", orderID, paymentID, err)
	}
	return nil
}
