package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

func (h *Handler) GetHome(c *gin.Context) {
	home, err := h.catalog.Home(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(home))
}

func (h *Handler) GetFeaturedProducts(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	products, err := h.catalog.GetFeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("X-Total-Count", itoa(len(products)))
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (h *Handler) SearchProducts(c *gin.Context) {
	var filters catalog.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid search filters", []global.ValidationError{
			{Field: "query", Message: err.Error(), Code: "invalid_format"},
		}))
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("X-Total-Count", itoa(len(products)))
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (h *Handler) GetProductByID(c *gin.Context) {
	id := c.Param("id")

	product, err := h.catalog.GetProductByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
			{Field: "id", Message: "No product exists with this id", Code: "not_found"},
		}))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *Handler) GetActiveOffers(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	offers, err := h.catalog.GetActiveOffers(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(offers))
}
