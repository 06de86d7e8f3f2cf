package scraper

import (
	"context"
	"errors"

	"github.com/EvanZhouDev/scope-search/models"
)

// categorizeError wraps raw errors into typed SearchErrors so the API layer
// can map them to appropriate HTTP status codes. Context expiry always
// becomes SCRAPE_TIMEOUT; anything else gets fallbackCode.
func categorizeError(err error, fallbackCode, msg string) *models.SearchError {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewSearchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewSearchError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewSearchError(fallbackCode, msg, err)
	}
}
