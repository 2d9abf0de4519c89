package models

// CartItem pairs a product snapshot, copied when the item was added, with a quantity of at least one.
// Later catalog price changes do not reach items already in a cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartView is the read model returned to clients; totals are derived, never stored
type CartView struct {
	SessionID  string     `json:"sessionId"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}
