package scraper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EvanZhouDev/scope-search/config"
	"github.com/EvanZhouDev/scope-search/models"
	"golang.org/x/sync/semaphore"
)

// Session owns the single browser for the lifetime of the service and
// admits at most MaxPages concurrently open pages.
// It is safe for concurrent use.
type Session struct {
	browser        Browser
	slots          *semaphore.Weighted
	maxPages       int
	acquireTimeout time.Duration

	active   atomic.Int32
	served   atomic.Int64
	rejected atomic.Int64
}

// NewSession wraps an already launched browser.
func NewSession(browser Browser, cfg config.BrowserConfig) *Session {
	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}
	slog.Info("page slots created", "maxPages", maxPages, "acquireTimeout", cfg.AcquireTimeout)
	return &Session{
		browser:        browser,
		slots:          semaphore.NewWeighted(int64(maxPages)),
		maxPages:       maxPages,
		acquireTimeout: cfg.AcquireTimeout,
	}
}

// Lease is a page checked out of the session. Release must be called on
// every path; calls after the first are no-ops.
type Lease struct {
	Page Page

	once    sync.Once
	session *Session
}

// Release closes the page and frees its slot.
func (l *Lease) Release() {
	l.once.Do(func() {
		if err := l.Page.Close(); err != nil {
			slog.Warn("page close failed", "error", err)
		}
		l.session.active.Add(-1)
		l.session.slots.Release(1)
	})
}

// Acquire waits for a free slot (bounded by the acquire timeout) and opens
// a new isolated page in it.
//
// When no slot frees up in time the call fails with CAPACITY_EXCEEDED.
func (s *Session) Acquire(ctx context.Context) (*Lease, error) {
	if err := s.waitSlot(ctx); err != nil {
		return nil, err
	}

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		s.slots.Release(1)
		return nil, categorizeError(err, models.ErrCodeBrowserCrash, "failed to open browser page")
	}

	s.active.Add(1)
	s.served.Add(1)
	return &Lease{Page: page, session: s}, nil
}

func (s *Session) waitSlot(ctx context.Context) error {
	if s.acquireTimeout <= 0 {
		if s.slots.TryAcquire(1) {
			return nil
		}
		s.rejected.Add(1)
		return models.NewSearchError(models.ErrCodeCapacityExceeded, "all browser pages are busy", nil)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()
	if err := s.slots.Acquire(waitCtx, 1); err != nil {
		// The caller's own deadline or cancellation is not a capacity problem.
		if ctx.Err() != nil {
			return categorizeError(ctx.Err(), models.ErrCodeTimeout, "request expired while waiting for a browser page")
		}
		s.rejected.Add(1)
		return models.NewSearchError(models.ErrCodeCapacityExceeded, "all browser pages are busy", err)
	}
	return nil
}

// Stats returns a snapshot of the slot usage.
func (s *Session) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.maxPages,
		ActivePages: int(s.active.Load()),
		Served:      s.served.Load(),
		Rejected:    s.rejected.Load(),
	}
}

// Close kills the browser. Call this on graceful shutdown to prevent
// zombie Chrome processes.
func (s *Session) Close() {
	slog.Info("session shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("session shutdown complete")
}
