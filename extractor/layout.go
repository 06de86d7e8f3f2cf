package extractor

import (
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Layout is the DOM-shape contract for one rendering of the results page.
//
// Container must exist for the layout to apply at all. Item is matched
// against the whole document and yields one element per organic result,
// in rank order. Title, Snippet and Link are matched inside each item;
// the first Link match provides the href.
type Layout struct {
	Name string

	// Scripted layouts are only produced by a JS-rendering client and are
	// the ones the browser waits for.
	Scripted bool

	container string
	Container cascadia.Selector
	Item      cascadia.Selector
	Title     cascadia.Selector
	Snippet   cascadia.Selector
	Link      cascadia.Selector

	// CleanHref post-processes the raw href attribute. Nil keeps it as-is.
	CleanHref func(string) string
}

func newLayout(name string, scripted bool, container, item, title, snippet, link string, cleanHref func(string) string) Layout {
	return Layout{
		Name:      name,
		Scripted:  scripted,
		container: container,
		Container: cascadia.MustCompile(container),
		Item:      cascadia.MustCompile(item),
		Title:     cascadia.MustCompile(title),
		Snippet:   cascadia.MustCompile(snippet),
		Link:      cascadia.MustCompile(link),
		CleanHref: cleanHref,
	}
}

// layouts are tried in order; the first whose container is present wins.
var layouts = []Layout{
	// Full JS results page. Snippet position is structural: the second
	// div of the article holds the description paragraph.
	newLayout("react", true,
		`ol.react-results--main`,
		`ol.react-results--main > li[data-layout="organic"] article`,
		`h2 a span`,
		`div:nth-of-type(2) > div > div > p`,
		`h2 a`,
		nil,
	),
	// Script-free results page served to the http engine.
	newLayout("html", false,
		`#links`,
		`#links .result:not(.result--ad)`,
		`a.result__a`,
		`.result__snippet`,
		`a.result__a`,
		unwrapRedirect,
	),
}

// Layouts returns the layout variants in the order they are tried.
func Layouts() []Layout {
	out := make([]Layout, len(layouts))
	copy(out, layouts)
	return out
}

// ReadySelector is the readiness predicate for a browser render: a
// selector group matching the container of every scripted layout.
func ReadySelector() string {
	var parts []string
	for _, l := range layouts {
		if l.Scripted {
			parts = append(parts, l.container)
		}
	}
	return strings.Join(parts, ", ")
}

// unwrapRedirect turns "//duckduckgo.com/l/?uddg=<target>&rut=..." into
// the target URL. Anything else is returned unchanged.
func unwrapRedirect(href string) string {
	raw := href
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path != "/l/" {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
