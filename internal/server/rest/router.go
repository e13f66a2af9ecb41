// Package rest serves the dashboard fixture API over HTTP.
package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

// TokenValidator resolves a bearer token to its metadata.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*models.TokenMetadata, error)
}

// Dependencies groups what the router needs.
type Dependencies struct {
	Validator   TokenValidator
	Logger      logging.Logger
	Registry    *prometheus.Registry
	MetricsPath string
}

// NewRouter builds a Gin engine with the public and the protected routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	if deps.Registry != nil {
		router.Use(instrument(newHTTPMetrics(deps.Registry)))
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	protected := api.Group("/")
	protected.Use(AuthMiddleware(deps.Validator))
	protected.GET("/resources/:name", getResource)
	protected.GET("/me", getMe)

	return router
}
