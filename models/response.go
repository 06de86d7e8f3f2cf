package models

// SearchResult is one organic result. Name holds the descriptive snippet.
// Fields missing on the page are empty strings, never omitted.
type SearchResult struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	Href  string `json:"href"`
}

// SearchResponse is the 200 body for POST /search.
type SearchResponse struct {
	// Results are in on-page rank order. Never null.
	Results []SearchResult `json:"results"`

	// CacheStatus is "hit" or "miss" when caching was requested.
	CacheStatus string `json:"cache_status,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page slots.
type PoolStats struct {
	MaxPages    int   `json:"max_pages"`
	ActivePages int   `json:"active_pages"`
	Served      int64 `json:"served"`
	Rejected    int64 `json:"rejected"`
}
