package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vegshop/internal/service/owner"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

// ownerAuth guards owner routes with HTTP basic auth.
func ownerAuth(auth OwnerAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			abortUnauthorized(c, owner.ErrDisabled)
			return
		}
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="owner"`)
			abortUnauthorized(c, owner.ErrInvalidCredentials)
			return
		}
		if err := auth.Authenticate(username, password); err != nil {
			if !errors.Is(err, owner.ErrDisabled) {
				c.Header("WWW-Authenticate", `Basic realm="owner"`)
			}
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: err.Error()})
}
