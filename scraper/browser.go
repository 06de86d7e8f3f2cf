package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/EvanZhouDev/scope-search/config"
	"github.com/EvanZhouDev/scope-search/identity"
	"github.com/EvanZhouDev/scope-search/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Browser is the long-lived browser process. It hands out isolated pages.
type Browser interface {
	// NewPage opens a tab in a fresh browsing context. The context is not
	// shared with any other page.
	NewPage(ctx context.Context) (Page, error)

	// Close kills the browser process.
	Close() error
}

// Page is one isolated browsing context with a single tab.
type Page interface {
	SetIdentity(ctx context.Context, id identity.Identity) error
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until at least one element matches selector, or
	// timeout elapses.
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error

	// HTML returns the rendered markup of the current document.
	HTML(ctx context.Context) (string, error)

	// Close tears the page and its browsing context down. It is safe to
	// call more than once.
	Close() error
}

// rodBrowser is the go-rod implementation of Browser.
type rodBrowser struct {
	launcher     *launcher.Launcher
	browser      *rod.Browser
	stealth      bool
	blockedTypes []string
	blockAds     bool
}

// LaunchBrowser starts a headless Chromium and connects to it.
// Automation signals are suppressed at launch; the sandbox follows cfg.
func LaunchBrowser(cfg config.BrowserConfig) (Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	if cfg.NoSandbox {
		l.Set(flags.Flag("disable-setuid-sandbox"))
	}
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewSearchError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}

	return &rodBrowser{
		launcher:     l,
		browser:      browser,
		stealth:      cfg.Stealth,
		blockedTypes: cfg.BlockedResourceTypes,
		blockAds:     cfg.BlockAds,
	}, nil
}

// NewPage creates an incognito browser context and a blank tab inside it.
//
// The returned page holds references that are NOT bound to ctx, so Close
// still works after the request context has expired.
func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, err
	}
	incognito = incognito.Context(context.Background())

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, err
	}
	page = page.Context(context.Background())

	// Stealth and hijacking must be installed before the first navigation.
	if b.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	return &rodPage{
		context: incognito,
		page:    page,
		router:  setupHijack(page, b.blockedTypes, b.blockAds),
	}, nil
}

// Close closes the browser connection and kills the process.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

// rodPage is one incognito context plus its tab.
type rodPage struct {
	context *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter

	closeOnce sync.Once
	closeErr  error
}

// SetIdentity overrides the user agent, navigator.platform and language.
// The override covers navigator.*; the extra header covers subresources.
func (p *rodPage) SetIdentity(ctx context.Context, id identity.Identity) error {
	pg := p.page.Context(ctx)
	err := proto.NetworkSetUserAgentOverride{
		UserAgent:      id.UserAgent,
		AcceptLanguage: id.AcceptLanguage,
		Platform:       id.Platform,
	}.Call(pg)
	if err != nil {
		return err
	}
	if id.AcceptLanguage == "" {
		return nil
	}
	return proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Accept-Language": id.AcceptLanguage}),
	}.Call(pg)
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	return p.page.Context(ctx).Navigate(url)
}

func (p *rodPage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	pg := p.page.Context(ctx)
	if timeout > 0 {
		pg = pg.Timeout(timeout)
	}
	return pg.WaitElementsMoreThan(selector, 0)
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Close stops the hijack router, closes the tab and disposes the incognito
// context. Only the first call does any work.
func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		if p.router != nil {
			_ = p.router.Stop()
		}
		if err := p.page.Close(); err != nil {
			p.closeErr = err
		}
		if err := p.context.Close(); err != nil && p.closeErr == nil {
			p.closeErr = err
		}
	})
	return p.closeErr
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
