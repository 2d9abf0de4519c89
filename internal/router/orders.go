package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

func (h *Handler) GetUserOrders(c *gin.Context) {
	user := currentUser(c)

	orders, err := h.orders.GetUserOrders(c.Request.Context(), user.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("X-Total-Count", itoa(len(orders)))
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

// GetOrderByID only returns orders owned by the caller; anyone else's order is reported as missing
func (h *Handler) GetOrderByID(c *gin.Context) {
	user := currentUser(c)

	order, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindTransient, "failed to load order", err))
		return
	}
	if order == nil || order.UserID != user.UserID {
		writeError(c, apperr.New(apperr.KindNotFound, "order not found").With("order_id", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (h *Handler) GetOrderInsights(c *gin.Context) {
	if h.insights == nil {
		writeError(c, apperr.New(apperr.KindNotFound, "order insights are not available"))
		return
	}

	report, err := h.insights.GenerateOrderInsights(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindTransient, "failed to build order insights", err))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}
