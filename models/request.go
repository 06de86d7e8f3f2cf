package models

import (
	"strings"
	"unicode/utf8"
)

// Engines accepted in SearchRequest.Engine.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// SearchRequest is the payload for POST /search.
type SearchRequest struct {
	// Query is the free-text search query. Required.
	Query string `json:"query"`

	// Engine selects how the results page is rendered.
	// "browser" (default): headless Chromium renders the full results page.
	// "http": fetch the provider's script-free HTML endpoint directly.
	Engine string `json:"engine,omitempty"`

	// MaxAge enables the result cache: a cached response younger than
	// MaxAge milliseconds is returned without touching the browser.
	// Default: 0 (no caching).
	MaxAge int `json:"max_age,omitempty"`
}

// Defaults applies default values to unset fields and trims the query.
func (r *SearchRequest) Defaults() {
	r.Query = strings.TrimSpace(r.Query)
	if r.Engine == "" {
		r.Engine = EngineBrowser
	}
}

// Validate checks the request after Defaults has run. maxQueryLength <= 0
// disables the length check.
func (r *SearchRequest) Validate(maxQueryLength int) *SearchError {
	if r.Query == "" {
		return NewValidationError(MsgMissingQuery)
	}
	if maxQueryLength > 0 && utf8.RuneCountInString(r.Query) > maxQueryLength {
		return NewValidationError(MsgQueryTooLong)
	}
	switch r.Engine {
	case EngineBrowser, EngineHTTP:
	default:
		return NewValidationError(MsgUnsupportedEngine)
	}
	if r.MaxAge < 0 {
		r.MaxAge = 0
	}
	return nil
}
