package handler

import (
	"net/http"
	"time"

	"github.com/EvanZhouDev/scope-search/models"
	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /health.
//
// Reports page slot utilisation and degrades status when > 80% of slots
// are in use.
func Health(s Searcher, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := s.Stats()

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		})
	}
}
