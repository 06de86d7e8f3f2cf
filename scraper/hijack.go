package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// adHosts are ad and tracking hosts seen on results pages.
// Sponsored results themselves are filtered by the extractor.
var adHosts = map[string]struct{}{
	"improving.duckduckgo.com": {},
	"doubleclick.net":          {},
	"googlesyndication.com":    {},
	"googleadservices.com":     {},
	"google-analytics.com":     {},
	"googletagmanager.com":     {},
	"bat.bing.com":             {},
	"adnxs.com":                {},
	"amazon-adsystem.com":      {},
	"criteo.com":               {},
	"scorecardresearch.com":    {},
}

// isAdHost checks if a hostname (or any parent domain) is in the blocklist.
func isAdHost(host string) bool {
	host = strings.ToLower(host)
	for {
		if _, ok := adHosts[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
	}
}

// resourceBlocker decides whether a request should be failed before it
// leaves the browser.
type resourceBlocker struct {
	types    map[proto.NetworkResourceType]struct{}
	blockAds bool
}

func newResourceBlocker(blockedTypes []string, blockAds bool) *resourceBlocker {
	types := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			types[rt] = struct{}{}
		}
	}
	if len(types) == 0 && !blockAds {
		return nil
	}
	return &resourceBlocker{types: types, blockAds: blockAds}
}

func (b *resourceBlocker) blocks(rt proto.NetworkResourceType, rawURL string) bool {
	if _, ok := b.types[rt]; ok {
		return true
	}
	if b.blockAds && rt != proto.NetworkResourceTypeDocument {
		if u, err := url.Parse(rawURL); err == nil && isAdHost(u.Hostname()) {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor that fails blocked requests
// and continues everything else.
//
// Returns the running HijackRouter so the page can stop it on close.
// Returns nil if there is nothing to block.
func setupHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	blocker := newResourceBlocker(blockedTypes, blockAds)
	if blocker == nil {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if blocker.blocks(ctx.Request.Type(), ctx.Request.URL().String()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks until router.Stop().
	go router.Run()

	return router
}
