package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
	"github.com/dmitrijs2005/gophdash/internal/server/auth"
)

const tokenContextKey = "gophdashToken"

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token metadata on the context.
func AuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := auth.BearerToken(header)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		meta, err := v.Validate(c.Request.Context(), token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(tokenContextKey, meta)
		c.Request = c.Request.WithContext(auth.WithMetadata(c.Request.Context(), meta))
		c.Next()
	}
}

// CurrentToken returns the metadata stored by AuthMiddleware.
func CurrentToken(c *gin.Context) (*models.TokenMetadata, bool) {
	v, ok := c.Get(tokenContextKey)
	if !ok {
		return nil, false
	}
	meta, ok := v.(*models.TokenMetadata)
	return meta, ok
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	if l == nil {
		l = logging.Nop()
	}
	l = l.With("module", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetHeader(common.CorrelationHeaderName),
		)
	}
}
