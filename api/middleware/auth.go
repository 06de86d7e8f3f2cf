package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/EvanZhouDev/scope-search/models"
	"github.com/gin-gonic/gin"
)

// apiKeyContextKey holds the authenticated key; RateLimit buckets by it.
const apiKeyContextKey = "api_key"

// Auth rejects /search calls that do not present one of apiKeys, either as
// "X-API-Key: <key>" or "Authorization: Bearer <key>".
// With no keys configured every request passes.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		presented := presentedKey(c.Request)
		if presented == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if !knownKey(keys, []byte(presented)) {
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Set(apiKeyContextKey, presented)
		c.Next()
	}
}

func presentedKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// knownKey compares against every key so timing does not reveal which
// prefix matched.
func knownKey(keys [][]byte, presented []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, presented)
	}
	return found == 1
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: msg,
		Code:  models.ErrCodeUnauthorized,
	})
}
