package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance and page admission.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in containers).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to the browser at launch.
	Proxy string

	// Stealth injects go-rod/stealth into every new document.
	Stealth bool // default: true

	// MaxPages caps the number of simultaneously open pages.
	MaxPages int // default: 10

	// AcquireTimeout is how long a request may queue for a free page slot.
	// Zero rejects immediately when every slot is taken.
	AcquireTimeout time.Duration // default: 10s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds drops requests to well-known ad and tracking hosts.
	BlockAds bool // default: true
}

// ScraperConfig controls per-request orchestration.
type ScraperConfig struct {
	// SearchURL is the provider endpoint the query is appended to.
	SearchURL string // default: "https://duckduckgo.com/"

	// HTMLSearchURL is the endpoint used by the script-free "http" engine.
	HTMLSearchURL string // default: "https://html.duckduckgo.com/html/"

	// RequestTimeout bounds the whole render (acquire + navigate + wait + capture).
	RequestTimeout time.Duration // default: 30s

	// ReadyTimeout bounds the wait for the results container.
	ReadyTimeout time.Duration // default: 15s

	// ReadySelector overrides the readiness predicate. Empty uses the
	// extractor's result containers.
	ReadySelector string

	// MaxQueryLength is the maximum accepted query length in runes.
	MaxQueryLength int // default: 512
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables limiting.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client.
	Burst int // default: 10
}

// CacheConfig controls the search result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached queries.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCOPE_HOST", "0.0.0.0"),
			Port: envIntOr("SCOPE_PORT", 3000),
			Mode: envOr("SCOPE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("SCOPE_HEADLESS", true),
			NoSandbox:      envBoolOr("SCOPE_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("SCOPE_BROWSER_BIN"),
			Proxy:          os.Getenv("SCOPE_PROXY"),
			Stealth:        envBoolOr("SCOPE_STEALTH", true),
			MaxPages:       envIntOr("SCOPE_MAX_PAGES", 10),
			AcquireTimeout: envDurationOr("SCOPE_ACQUIRE_TIMEOUT", 10*time.Second),
			BlockedResourceTypes: envSliceOr("SCOPE_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			BlockAds: envBoolOr("SCOPE_BLOCK_ADS", true),
		},
		Scraper: ScraperConfig{
			SearchURL:      envOr("SCOPE_SEARCH_URL", "https://duckduckgo.com/"),
			HTMLSearchURL:  envOr("SCOPE_HTML_SEARCH_URL", "https://html.duckduckgo.com/html/"),
			RequestTimeout: envDurationOr("SCOPE_REQUEST_TIMEOUT", 30*time.Second),
			ReadyTimeout:   envDurationOr("SCOPE_READY_TIMEOUT", 15*time.Second),
			ReadySelector:  os.Getenv("SCOPE_READY_SELECTOR"),
			MaxQueryLength: envIntOr("SCOPE_MAX_QUERY_LENGTH", 512),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SCOPE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SCOPE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCOPE_RATE_RPS", 5.0),
			Burst:             envIntOr("SCOPE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SCOPE_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("SCOPE_LOG_LEVEL", "info"),
			Format: envOr("SCOPE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
