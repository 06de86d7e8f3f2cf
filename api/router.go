package api

import (
	"time"

	"github.com/EvanZhouDev/scope-search/api/handler"
	"github.com/EvanZhouDev/scope-search/api/middleware"
	"github.com/EvanZhouDev/scope-search/cache"
	"github.com/EvanZhouDev/scope-search/config"
	"github.com/gin-gonic/gin"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	Search:  Auth (if enabled) → RateLimit
//
// /health stays outside auth so monitoring probes always work.
func NewRouter(s handler.Searcher, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	// Health: no auth required.
	r.GET("/health", handler.Health(s, startTime))

	// Protected group: auth + rate limit.
	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/search", handler.Search(s, cc, cfg.Scraper.MaxQueryLength))

	return r
}
