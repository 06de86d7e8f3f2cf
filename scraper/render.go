package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/EvanZhouDev/scope-search/models"
)

// Render is the top-level orchestrator: it validates the query and renders
// the results page with the requested engine. There are no retries; one
// failure is one failed request.
func (s *Scraper) Render(ctx context.Context, query, engine string) (*Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError(models.MsgMissingQuery)
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	switch engine {
	case "", models.EngineBrowser:
		return s.renderBrowser(ctx, query)
	case models.EngineHTTP:
		return s.renderHTTP(ctx, query)
	default:
		return nil, models.NewValidationError(models.MsgUnsupportedEngine)
	}
}

// renderBrowser drives one isolated page through the search.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire page        – wait for a slot, open a fresh incognito context
//  2. DEFER: release      – close page + context, free the slot (every path)
//  3. Identity            – user agent override (before navigation!)
//  4. Navigate            – load the results page for the query
//  5. Wait                – results container present, bounded by ReadyTimeout
//  6. Capture             – page.HTML()
func (s *Scraper) renderBrowser(ctx context.Context, query string) (*Document, error) {
	start := time.Now()

	// ── 1. Acquire page ───────────────────────────────────────────────
	lease, err := s.session.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	// ── 2. Release on every exit path ─────────────────────────────────
	defer lease.Release()
	page := lease.Page

	// ── 3. Identity ───────────────────────────────────────────────────
	id := s.ids.Next()
	if err := page.SetIdentity(ctx, id); err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserCrash, "failed to apply browser identity")
	}

	// ── 4. Navigate ───────────────────────────────────────────────────
	target := s.SearchURL(query)
	if err := page.Navigate(ctx, target); err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "navigation to search page failed")
	}

	// ── 5. Wait for the results container ─────────────────────────────
	if err := page.WaitReady(ctx, s.readySelector, s.cfg.ReadyTimeout); err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "search results did not render")
	}

	// ── 6. Capture rendered HTML ──────────────────────────────────────
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserCrash, "failed to capture page HTML")
	}

	slog.Debug("search page rendered",
		"engine", models.EngineBrowser,
		"bytes", len(html),
		"duration", time.Since(start),
	)

	return &Document{
		HTML:        html,
		SourceURL:   target,
		FetchMethod: models.EngineBrowser,
	}, nil
}

// renderHTTP fetches the script-free results page without a browser.
func (s *Scraper) renderHTTP(ctx context.Context, query string) (*Document, error) {
	target := withQuery(s.htmlSearchURL, query)
	body, err := s.httpFetcher.fetch(ctx, target, s.ids.Next())
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "fetching search page failed")
	}
	return &Document{
		HTML:        string(body),
		SourceURL:   target,
		FetchMethod: models.EngineHTTP,
	}, nil
}
