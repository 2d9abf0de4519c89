package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type confirmRequest struct {
	ClientSecret    string                 `json:"clientSecret" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type finalizeRequest struct {
	PaymentID       string                 `json:"paymentId" binding:"required"`
	ClientSecret    string                 `json:"clientSecret"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

// checkoutError adds the state the client should move to, so a captured payment is never shown as a
// payment failure
func checkoutError(c *gin.Context, err error) {
	respondError(c, err, gin.H{"state": checkout.StateForError(err)})
}

func (h *Handler) GetQuote(c *gin.Context) {
	totals, err := h.checkout.QuoteSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(totals))
}

func (h *Handler) BeginCheckout(c *gin.Context) {
	attempt, err := h.checkout.Begin(c.Request.Context(), checkout.BeginRequest{
		SessionID: c.Param("sessionId"),
		Token:     c.GetString(tokenKey),
	})
	if err != nil {
		checkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(attempt))
}

func (h *Handler) ConfirmCheckout(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.checkout.Confirm(c.Request.Context(), checkout.ConfirmRequest{
		SessionID:       c.Param("sessionId"),
		Token:           c.GetString(tokenKey),
		ClientSecret:    req.ClientSecret,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		checkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(result))
}

// FinalizeCheckout retries the order write for a payment that was captured but not recorded.
// The client secret is only needed when the ledger lost the payment.
func (h *Handler) FinalizeCheckout(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.checkout.Finalize(c.Request.Context(), checkout.FinalizeRequest{
		SessionID:       c.Param("sessionId"),
		Token:           c.GetString(tokenKey),
		PaymentID:       req.PaymentID,
		ClientSecret:    req.ClientSecret,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		checkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(result))
}
