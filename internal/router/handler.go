package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/identity"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
)

// Services are the collaborators the HTTP handlers delegate to. Insights and Health are optional.
type Services struct {
	Catalog  *catalog.Service
	Carts    *cart.Sessions
	Identity *identity.Provider
	Checkout *checkout.Orchestrator
	Orders   *orders.Store
	Insights *ai.Reporter
	Health   func(ctx context.Context) error
	Logger   *zap.Logger
}

type Handler struct {
	catalog  *catalog.Service
	carts    *cart.Sessions
	identity *identity.Provider
	checkout *checkout.Orchestrator
	orders   *orders.Store
	insights *ai.Reporter
	health   func(ctx context.Context) error
	logger   *zap.Logger
}

func NewHandler(s Services) *Handler {
	return &Handler{
		catalog:  s.Catalog,
		carts:    s.Carts,
		identity: s.Identity,
		checkout: s.Checkout,
		orders:   s.Orders,
		insights: s.Insights,
		health:   s.Health,
		logger:   global.LoggerOrNop(s.Logger),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Database connection failed", nil))
			return
		}
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthRequired, apperr.KindInvalidCredentials:
		return http.StatusUnauthorized
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPaymentDeclined:
		return http.StatusPaymentRequired
	case apperr.KindPaymentCancelled, apperr.KindPopupBlocked:
		return http.StatusUnprocessableEntity
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	case apperr.KindOrderPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	respondError(c, err, nil)
}

// respondError writes the error envelope: kind, message, structured fields in data and a field level
// validation entry when the error names one
func respondError(c *gin.Context, err error, extra gin.H) {
	_ = c.Error(err)
	kind := apperr.KindOf(err)

	message := "Internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		message = appErr.Message
	}

	resp := global.KindResponse(kind.String(), message)

	data := gin.H{}
	for k, v := range extra {
		data[k] = v
	}
	if appErr != nil {
		for k, v := range appErr.Fields {
			if k == "field" {
				resp.AddFieldError(v, "invalid")
				continue
			}
			data[k] = v
		}
	}
	if len(data) > 0 {
		resp.Data = data
	}

	c.JSON(statusFor(kind), resp)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
}

// queryLimit parses an optional positive ?limit=; zero means the service default
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid limit", []global.ValidationError{
			{Field: "limit", Message: "limit must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return limit, true
}
