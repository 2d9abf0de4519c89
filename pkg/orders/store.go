package orders

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	DefaultUserID        = "anonymous"
	DefaultProductID     = "unknown-id"
	DefaultProductName   = "Unnamed Product"
	DefaultFullName      = "Customer"
	DefaultPaymentMethod = "Credit Card"
	DefaultPaymentID     = "unknown"
)

// Repository is the durable order collection. FindByID returns nil and no error when the id does not exist.
type Repository interface {
	Insert(ctx context.Context, order *models.Order) (string, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
}

type CreateOrderInput struct {
	UserID          string
	Items           []models.CartItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	PaymentID       string
	Subtotal        float64
	ShippingCost    float64
	Discount        float64
	Total           float64
}

type Store struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(repo Repository, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: global.LoggerOrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder snapshots the cart lines into a completed order and returns the id the repository assigned.
// Missing fields are replaced with defaults. Repository errors are returned as is.
func (s *Store) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	if len(in.Items) == 0 {
		return "", apperr.New(apperr.KindValidation, "an order needs at least one item")
	}

	order := &models.Order{
		UserID:          orDefault(in.UserID, DefaultUserID),
		OrderDate:       s.now(),
		OrderItems:      make([]models.OrderItem, 0, len(in.Items)),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   orDefault(in.PaymentMethod, DefaultPaymentMethod),
		PaymentID:       orDefault(in.PaymentID, DefaultPaymentID),
		Subtotal:        in.Subtotal,
		ShippingCost:    in.ShippingCost,
		Discount:        in.Discount,
		Total:           in.Total,
		Status:          models.OrderStatusCompleted,
	}
	order.ShippingAddress.FullName = orDefault(in.ShippingAddress.FullName, DefaultFullName)

	for _, item := range in.Items {
		order.OrderItems = append(order.OrderItems, snapshotItem(item))
	}

	if !order.Reconciles() {
		s.logger.Warn("order totals do not reconcile",
			zap.String("payment_id", order.PaymentID),
			zap.Float64("subtotal", order.Subtotal),
			zap.Float64("shipping", order.ShippingCost),
			zap.Float64("discount", order.Discount),
			zap.Float64("total", order.Total))
	}

	id, err := s.repo.Insert(ctx, order)
	if err != nil {
		return "", err
	}

	s.logger.Info("order created",
		zap.String("order_id", id),
		zap.String("user_id", order.UserID),
		zap.Int("items", order.GetItemCount()),
		zap.Float64("total", order.Total))
	return id, nil
}

// GetUserOrders returns the user's orders, newest first
func (s *Store) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.New(apperr.KindValidation, "user id is required")
	}

	orders, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrderByID returns nil and no error when the order does not exist
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	return s.repo.FindByID(ctx, id)
}

func snapshotItem(item models.CartItem) models.OrderItem {
	p := item.Product
	out := models.OrderItem{
		ProductID: orDefault(p.ID, DefaultProductID),
		Name:      orDefault(p.Name, DefaultProductName),
		Price:     max(p.Price, 0),
		Quantity:  item.Quantity,
		Image:     p.FirstImage(),
	}
	if out.Quantity < 1 {
		out.Quantity = 1
	}
	if p.Discount != nil {
		out.Discount = models.IntPtr(*p.Discount)
	}
	return out
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
