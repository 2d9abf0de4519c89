package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/pricing"
)

// Storage persists the serialized cart. Load returns nil data and no error when nothing is stored under key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns one cart. Mutations are serialized and the full snapshot is written to storage after each one.
// Storage failures never fail a mutation; the in-memory cart stays authoritative.
type Store struct {
	mu      sync.Mutex
	key     string
	items   []models.CartItem
	storage Storage
	logger  *zap.Logger
}

// NewStore restores the cart stored under key. A missing, unreadable or corrupt entry yields an empty cart.
func NewStore(ctx context.Context, key string, storage Storage, logger *zap.Logger) *Store {
	s := &Store{
		key:     key,
		items:   []models.CartItem{},
		storage: storage,
		logger:  global.LoggerOrNop(logger).With(zap.String("cart", key)),
	}
	s.load(ctx)
	return s
}

func (s *Store) Key() string {
	return s.key
}

// AddToCart increases the quantity of an existing line or appends a snapshot of product
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) error {
	if quantity < 1 {
		return apperr.Newf(apperr.KindValidation, "quantity must be at least 1, got %d", quantity)
	}
	if product.ID == "" {
		return apperr.New(apperr.KindValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, models.CartItem{Product: product.Clone(), Quantity: quantity})
	}
	s.persist(ctx)
	return nil
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(productID)
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it and unknown ids are ignored
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(productID)
	} else if i := s.indexOf(productID); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.persist(ctx)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.CartItem{}
	s.persist(ctx)
}

// Items returns a copy of the lines in insertion order
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, len(s.items))
	for i, item := range s.items {
		out[i] = models.CartItem{Product: item.Product.Clone(), Quantity: item.Quantity}
	}
	return out
}

// Quantity returns the current quantity of productID, zero when it is not in the cart
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of discounted line totals, rounded to cents
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Round2(pricing.CartTotal(s.items))
}

func (s *Store) View() models.CartView {
	items := s.Items()
	view := models.CartView{SessionID: s.key, Items: items}
	for _, item := range items {
		view.TotalItems += item.Quantity
	}
	view.TotalPrice = pricing.Round2(pricing.CartTotal(items))
	return view
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) remove(productID string) {
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// persist must be called with mu held
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to save cart", zap.Error(err), zap.Int("items", len(s.items)))
	}
}

// newStoreFromData builds a store from an already loaded snapshot
func newStoreFromData(key string, data []byte, storage Storage, logger *zap.Logger) *Store {
	s := &Store{
		key:     key,
		items:   []models.CartItem{},
		storage: storage,
		logger:  global.LoggerOrNop(logger).With(zap.String("cart", key)),
	}
	s.restore(data)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to load cart, starting empty", zap.Error(err))
		return
	}
	s.restore(data)
}

func (s *Store) restore(data []byte) {
	if len(data) == 0 {
		return
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("stored cart is corrupt, starting empty", zap.Error(err))
		return
	}
	for _, item := range items {
		if item.Quantity < 1 || item.Product.ID == "" {
			s.logger.Warn("dropping invalid stored cart line", zap.String("product_id", item.Product.ID), zap.Int("quantity", item.Quantity))
			continue
		}
		s.items = append(s.items, item)
	}
}
