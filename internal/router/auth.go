package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(session))
}

func (h *Handler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(session))
}

// SignOut is idempotent; signing out without a token succeeds
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.identity.SignOut(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "signed out"}))
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentUser(c)))
}
