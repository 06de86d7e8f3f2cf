package scraper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EvanZhouDev/scope-search/identity"
)

// fakePage records every call made on it.
type fakePage struct {
	mu       sync.Mutex
	calls    []string
	ids      []identity.Identity
	url      string
	selector string
	closes   atomic.Int32

	html        string
	identityErr error
	navErr      error
	waitErr     error
	htmlErr     error

	// waitHook runs inside WaitReady, before waitErr is returned.
	waitHook func(ctx context.Context, timeout time.Duration) error
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

func (p *fakePage) SetIdentity(_ context.Context, id identity.Identity) error {
	p.record("identity")
	p.mu.Lock()
	p.ids = append(p.ids, id)
	p.mu.Unlock()
	return p.identityErr
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.record("navigate")
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return p.navErr
}

func (p *fakePage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	p.record("wait")
	p.mu.Lock()
	p.selector = selector
	p.mu.Unlock()
	if p.waitHook != nil {
		if err := p.waitHook(ctx, timeout); err != nil {
			return err
		}
	}
	return p.waitErr
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.record("html")
	return p.html, p.htmlErr
}

func (p *fakePage) Close() error {
	p.record("close")
	if p.closes.Add(1) > 1 {
		return errors.New("page already closed")
	}
	return nil
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// fakeBrowser hands out pages built by newPage.
type fakeBrowser struct {
	mu      sync.Mutex
	pages   []*fakePage
	newPage func() *fakePage
	pageErr error
	closed  atomic.Bool
}

func (b *fakeBrowser) NewPage(context.Context) (Page, error) {
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	var p *fakePage
	if b.newPage != nil {
		p = b.newPage()
	} else {
		p = &fakePage{html: "<html></html>"}
	}
	b.mu.Lock()
	b.pages = append(b.pages, p)
	b.mu.Unlock()
	return p, nil
}

func (b *fakeBrowser) Close() error {
	b.closed.Store(true)
	return nil
}

func (b *fakeBrowser) Pages() []*fakePage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakePage(nil), b.pages...)
}

// sequenceIDs returns a distinct identity on every call.
type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) Next() identity.Identity {
	n := s.n.Add(1)
	return identity.Identity{
		UserAgent:      "agent-" + itoa(n),
		Platform:       "Win32",
		AcceptLanguage: "en-US,en;q=0.9",
	}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
