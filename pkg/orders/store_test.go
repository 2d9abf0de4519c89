package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, order *models.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func fixedStore(repo Repository, now time.Time) *Store {
	s := NewStore(repo, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestCreateOrderBuildsSnapshot(t *testing.T) {
	repo := new(MockRepository)
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	store := fixedStore(repo, now)

	var saved *models.Order
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Order) }).
		Return("order-1", nil)

	id, err := store.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u1",
		Items: []models.CartItem{
			{Product: models.Product{ID: "p1", Name: "Headphones", Price: 199.99, Discount: models.IntPtr(20), Images: []string{"a.jpg", "b.jpg"}}, Quantity: 1},
			{Product: models.Product{ID: "p2", Name: "Watch", Price: 89.99}, Quantity: 2},
		},
		ShippingAddress: models.ShippingAddress{FullName: "Ada Lovelace", AddressLine1: "1 Main St", City: "Toronto", State: "ON", PostalCode: "M1M1M1", Country: "CA"},
		PaymentMethod:   "Credit Card",
		PaymentID:       "pay_1",
		Subtotal:        379.97,
		Discount:        40.00,
		Total:           339.97,
	})

	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
	require.NotNil(t, saved)
	assert.Equal(t, models.OrderStatusCompleted, saved.Status)
	assert.Equal(t, now, saved.OrderDate)
	assert.Equal(t, "u1", saved.UserID)
	require.Len(t, saved.OrderItems, 2)
	assert.Equal(t, models.OrderItem{ProductID: "p1", Name: "Headphones", Price: 199.99, Discount: models.IntPtr(20), Quantity: 1, Image: "a.jpg"}, saved.OrderItems[0])
	assert.Nil(t, saved.OrderItems[1].Discount)
	assert.Equal(t, 3, saved.GetItemCount())
	assert.True(t, saved.Reconciles())
	repo.AssertExpectations(t)
}

func TestCreateOrderAppliesDefaults(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)

	var saved *models.Order
	repo.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Order) }).
		Return("order-2", nil)

	_, err := store.CreateOrder(context.Background(), CreateOrderInput{
		Items: []models.CartItem{{Product: models.Product{Price: -5}, Quantity: 0}},
	})

	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, saved.UserID)
	assert.Equal(t, DefaultFullName, saved.ShippingAddress.FullName)
	assert.Equal(t, DefaultPaymentMethod, saved.PaymentMethod)
	assert.Equal(t, DefaultPaymentID, saved.PaymentID)
	assert.Equal(t, models.OrderItem{ProductID: DefaultProductID, Name: DefaultProductName, Price: 0, Quantity: 1, Image: ""}, saved.OrderItems[0])
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)

	_, err := store.CreateOrder(context.Background(), CreateOrderInput{UserID: "u1"})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateOrderPropagatesRepositoryError(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)
	writeErr := errors.New("write concern timeout")
	repo.On("Insert", mock.Anything, mock.Anything).Return("", writeErr)

	_, err := store.CreateOrder(context.Background(), CreateOrderInput{
		Items: []models.CartItem{{Product: models.Product{ID: "p1", Name: "A", Price: 1}, Quantity: 1}},
	})

	assert.ErrorIs(t, err, writeErr)
}

func TestGetUserOrdersNewestFirst(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.On("FindByUser", mock.Anything, "u1").Return([]models.Order{
		{ID: "t1", OrderDate: base.Add(1 * time.Hour)},
		{ID: "t3", OrderDate: base.Add(3 * time.Hour)},
		{ID: "t2", OrderDate: base.Add(2 * time.Hour)},
	}, nil)

	orders, err := store.GetUserOrders(context.Background(), "u1")

	require.NoError(t, err)
	ids := []string{orders[0].ID, orders[1].ID, orders[2].ID}
	assert.Equal(t, []string{"t3", "t2", "t1"}, ids)
}

func TestGetUserOrdersEmpty(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)
	repo.On("FindByUser", mock.Anything, "u2").Return(nil, nil)

	orders, err := store.GetUserOrders(context.Background(), "u2")

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	_, err = store.GetUserOrders(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetOrderByID(t *testing.T) {
	repo := new(MockRepository)
	store := NewStore(repo, nil)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, nil)
	repo.On("FindByID", mock.Anything, "o1").Return(&models.Order{ID: "o1"}, nil)

	order, err := store.GetOrderByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, order)

	order, err = store.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	order, err = store.GetOrderByID(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, order)
}
