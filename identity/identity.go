// Package identity hands out randomized desktop browser identities so that
// consecutive searches do not present the same fingerprint to the provider.
package identity

import (
	"math/rand/v2"
	"sync"
)

// Identity is the client fingerprint applied to a page before navigation.
type Identity struct {
	UserAgent      string
	Platform       string // navigator.platform
	AcceptLanguage string
}

// desktopPool holds desktop-class browsers only; mobile agents get a
// different results layout.
var desktopPool = []Identity{
	{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36", Platform: "Win32"},
	{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36", Platform: "Win32"},
	{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0", Platform: "Win32"},
	{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0", Platform: "Win32"},
	{UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36", Platform: "MacIntel"},
	{UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15", Platform: "MacIntel"},
	{UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:133.0) Gecko/20100101 Firefox/133.0", Platform: "MacIntel"},
	{UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36", Platform: "Linux x86_64"},
	{UserAgent: "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0", Platform: "Linux x86_64"},
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9,en-US;q=0.8",
	"en-US,en;q=0.8",
}

// Generator draws identities from the desktop pool.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return NewSeededGenerator(rand.Uint64(), rand.Uint64())
}

// NewSeededGenerator creates a deterministic Generator.
func NewSeededGenerator(seed1, seed2 uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Next returns one identity. Consecutive calls may repeat.
func (g *Generator) Next() Identity {
	g.mu.Lock()
	id := desktopPool[g.rng.IntN(len(desktopPool))]
	id.AcceptLanguage = acceptLanguages[g.rng.IntN(len(acceptLanguages))]
	g.mu.Unlock()
	return id
}

// Pool returns a copy of the desktop identities Next draws from.
func Pool() []Identity {
	out := make([]Identity, len(desktopPool))
	copy(out, desktopPool)
	return out
}
