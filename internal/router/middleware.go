package router

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// Identities is the part of identity.Provider the middleware needs
type Identities interface {
	Current(ctx context.Context, token string) (*models.Identity, error)
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Authenticate stores the bearer token, if any; it never rejects a request
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && strings.TrimSpace(token) != "" {
			c.Set(tokenKey, strings.TrimSpace(token))
		}
		c.Next()
	}
}

// RequireUser resolves the bearer token to an identity and aborts with 401 when there is none
func RequireUser(identities Identities) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := identities.Current(c.Request.Context(), c.GetString(tokenKey))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			writeError(c, apperr.New(apperr.KindAuthRequired, "sign in required"))
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.Identity {
	user, _ := c.Get(userKey)
	identity, _ := user.(*models.Identity)
	return identity
}
