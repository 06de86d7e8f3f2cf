package scraper

import (
	"fmt"
	"net/url"

	"github.com/EvanZhouDev/scope-search/config"
	"github.com/EvanZhouDev/scope-search/extractor"
	"github.com/EvanZhouDev/scope-search/identity"
	"github.com/EvanZhouDev/scope-search/models"
)

// IdentitySource supplies one browser identity per request.
type IdentitySource interface {
	Next() identity.Identity
}

// Document is an immutable snapshot of a rendered results page.
type Document struct {
	// HTML is the full rendered markup.
	HTML string

	// SourceURL is the URL the page was navigated to.
	SourceURL string

	// FetchMethod records how the page was rendered: "browser" or "http".
	FetchMethod string
}

// Scraper turns a query into a rendered results page.
// It is safe for concurrent use.
type Scraper struct {
	session       *Session
	ids           IdentitySource
	cfg           config.ScraperConfig
	searchURL     *url.URL
	htmlSearchURL *url.URL
	readySelector string
	httpFetcher   *httpFetcher
}

// New creates a Scraper that renders through session.
func New(session *Session, ids IdentitySource, cfg config.ScraperConfig) (*Scraper, error) {
	searchURL, err := url.Parse(cfg.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("scraper: invalid search URL %q: %w", cfg.SearchURL, err)
	}
	htmlSearchURL, err := url.Parse(cfg.HTMLSearchURL)
	if err != nil {
		return nil, fmt.Errorf("scraper: invalid html search URL %q: %w", cfg.HTMLSearchURL, err)
	}

	readySelector := cfg.ReadySelector
	if readySelector == "" {
		readySelector = extractor.ReadySelector()
	}

	return &Scraper{
		session:       session,
		ids:           ids,
		cfg:           cfg,
		searchURL:     searchURL,
		htmlSearchURL: htmlSearchURL,
		readySelector: readySelector,
		httpFetcher:   newHTTPFetcher(),
	}, nil
}

// Stats exposes the session's slot usage.
func (s *Scraper) Stats() models.PoolStats {
	return s.session.Stats()
}

// SearchURL returns the navigation target for query, percent-encoded into
// the q parameter of the configured search endpoint.
func (s *Scraper) SearchURL(query string) string {
	return withQuery(s.searchURL, query)
}

func withQuery(base *url.URL, query string) string {
	u := *base
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return u.String()
}
