package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// CreateCart hands out a fresh cart session id
func (h *Handler) CreateCart(c *gin.Context) {
	store, err := h.carts.Open(c.Request.Context(), h.carts.NewSessionID())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(store.View()))
}

// existingCart answers with an empty cart view, and returns nil, when the session has nothing stored
func (h *Handler) existingCart(c *gin.Context) *cart.Store {
	sessionID := c.Param("sessionId")
	store, err := h.carts.Existing(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return nil
	}
	if store == nil {
		c.JSON(http.StatusOK, global.SuccessResponse(models.CartView{SessionID: sessionID, Items: []models.CartItem{}}))
	}
	return store
}

func (h *Handler) GetCart(c *gin.Context) {
	store := h.existingCart(c)
	if store == nil {
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(store.View()))
}

// AddToCart snapshots the current catalog product into the cart. Requests that would take the line past
// a known stock level are rejected here; the cart itself does not track stock.
func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	store, err := h.carts.Open(ctx, c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}

	product, err := h.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	if product == nil {
		writeError(c, apperr.New(apperr.KindNotFound, "product not found").With("product_id", req.ProductID))
		return
	}

	wanted := store.Quantity(product.ID) + req.Quantity
	if product.ExceedsStock(wanted) {
		h.logger.Info("add to cart exceeds stock",
			zap.String("product_id", product.ID), zap.Int("requested", wanted), zap.Int("stock", *product.Stock))
		writeError(c, apperr.Newf(apperr.KindConflict, "only %d of %s in stock", *product.Stock, product.Name).
			With("product_id", product.ID).
			With("stock", itoa(*product.Stock)))
		return
	}

	if err := store.AddToCart(ctx, *product, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(store.View()))
}

// UpdateCartItem sets the quantity of a line; zero or less removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	store := h.existingCart(c)
	if store == nil {
		return
	}

	store.UpdateQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity)
	c.JSON(http.StatusOK, global.SuccessResponse(store.View()))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	store := h.existingCart(c)
	if store == nil {
		return
	}

	store.RemoveFromCart(c.Request.Context(), c.Param("productId"))
	c.JSON(http.StatusOK, global.SuccessResponse(store.View()))
}

func (h *Handler) ClearCart(c *gin.Context) {
	store := h.existingCart(c)
	if store == nil {
		return
	}

	store.ClearCart(c.Request.Context())
	c.JSON(http.StatusOK, global.SuccessResponse(store.View()))
}
