package models

import (
	"math"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is a frozen snapshot of a cart line taken when the order was created
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Discount  *int    `json:"discount,omitempty" bson:"discount,omitempty"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Image     string  `json:"image" bson:"image"`
}

type ShippingAddress struct {
	FullName     string `json:"fullName" bson:"fullName"`
	AddressLine1 string `json:"addressLine1" bson:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	PostalCode   string `json:"postalCode" bson:"postalCode"`
	Country      string `json:"country" bson:"country"`
}

// Order is the immutable record of a completed purchase
type Order struct {
	ID              string          `json:"id" bson:"-"`
	UserID          string          `json:"userId" bson:"userId"`
	OrderDate       time.Time       `json:"orderDate" bson:"orderDate"`
	OrderItems      []OrderItem     `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	PaymentID       string          `json:"paymentId" bson:"paymentId"`
	Subtotal        float64         `json:"subtotal" bson:"subtotal"`
	ShippingCost    float64         `json:"shippingCost" bson:"shippingCost"`
	Discount        float64         `json:"discount" bson:"discount"` // currency amount saved, not a percent
	Total           float64         `json:"total" bson:"total"`
	Status          OrderStatus     `json:"status" bson:"status"`
}

// GetItemCount returns the total number of units in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.OrderItems {
		count += item.Quantity
	}
	return count
}

// Reconciles checks total = subtotal + shippingCost - discount within half a cent
func (o *Order) Reconciles() bool {
	return math.Abs(o.Total-(o.Subtotal+o.ShippingCost-o.Discount)) < 0.005
}
