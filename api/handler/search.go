package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/EvanZhouDev/scope-search/api/middleware"
	"github.com/EvanZhouDev/scope-search/cache"
	"github.com/EvanZhouDev/scope-search/extractor"
	"github.com/EvanZhouDev/scope-search/models"
	"github.com/EvanZhouDev/scope-search/scraper"
	"github.com/gin-gonic/gin"
)

// Searcher renders results pages. *scraper.Scraper implements it.
type Searcher interface {
	Render(ctx context.Context, query, engine string) (*scraper.Document, error)
	Stats() models.PoolStats
}

// Search returns a handler for POST /search.
//
// Orchestration flow:
//  1. Parse & validate request (no browser work for a bad request).
//  2. Cache lookup when max_age is set.
//  3. Searcher.Render   → rendered results page
//  4. extractor.Extract → ordered results
//  5. Cache store, return 200.
func Search(s Searcher, cc *cache.Cache, maxQueryLength int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, models.NewValidationError(models.MsgInvalidBody))
			return
		}
		req.Defaults()
		if verr := req.Validate(maxQueryLength); verr != nil {
			respondError(c, verr)
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(req.Query, req.Engine)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.SearchResponse{Results: cached, CacheStatus: "hit"})
				return
			}
		}

		// ── 3. Render ───────────────────────────────────────────────
		doc, err := s.Render(c.Request.Context(), req.Query, req.Engine)
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 4. Extract ──────────────────────────────────────────────
		extraction, err := extractor.Extract(doc.HTML)
		if err != nil {
			respondError(c, models.NewSearchError(
				models.ErrCodeExtraction,
				"results page did not match any known layout",
				err,
			))
			return
		}

		slog.Info("search completed",
			"request_id", middleware.GetRequestID(c),
			"engine", doc.FetchMethod,
			"layout", extraction.Layout,
			"results", len(extraction.Results),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)

		// ── 5. Cache store and respond ──────────────────────────────
		resp := models.SearchResponse{Results: extraction.Results}
		if cacheKey != "" {
			cc.Set(cacheKey, extraction.Results)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps an error to the correct HTTP status code and writes
// the JSON error body.
func respondError(c *gin.Context, err error) {
	var searchErr *models.SearchError
	if !errors.As(err, &searchErr) {
		searchErr = models.NewSearchError(models.ErrCodeInternal, "internal error", err)
	}

	status := mapErrorToStatus(searchErr)
	if status >= http.StatusInternalServerError {
		slog.Warn("search failed",
			"request_id", middleware.GetRequestID(c),
			"status", status,
			"code", searchErr.Code,
			"error", searchErr,
		)
	}

	c.JSON(status, searchErr.ToResponse())
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.SearchError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavigation, models.ErrCodeExtraction:
		return http.StatusBadGateway // 502
	case models.ErrCodeCapacityExceeded:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
