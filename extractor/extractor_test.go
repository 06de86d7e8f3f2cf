package extractor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/EvanZhouDev/scope-search/models"
)

// reactItem renders one organic result in the scripted layout. An empty
// snippet leaves out the description block entirely.
func reactItem(layout, title, href, snippet string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<li data-layout="%s"><article>`, layout)
	fmt.Fprintf(&b, `<div><h2><a href="%s"><span>%s</span></a></h2></div>`, href, title)
	if snippet != "" {
		fmt.Fprintf(&b, `<div><div><div><p>%s</p></div></div></div>`, snippet)
	}
	b.WriteString(`</article></li>`)
	return b.String()
}

func reactPage(items ...string) string {
	return `<html><head><title>q at DuckDuckGo</title></head><body>` +
		`<a href="/">home</a>` +
		`<ol class="react-results--main">` + strings.Join(items, "") + `</ol>` +
		`</body></html>`
}

func TestExtract_ReactLayout(t *testing.T) {
	page := reactPage(
		reactItem("organic", "Alpha", "https://alpha.example/", "First snippet"),
		reactItem("ad", "Buy now", "https://ads.example/", "Sponsored"),
		reactItem("organic", "Beta", "https://beta.example/", "Second   snippet\n spread"),
		reactItem("organic", "Gamma", "https://gamma.example/", "Third snippet"),
	)

	got, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Layout != "react" {
		t.Errorf("layout = %q, want react", got.Layout)
	}

	want := []models.SearchResult{
		{Title: "Alpha", Name: "First snippet", Href: "https://alpha.example/"},
		{Title: "Beta", Name: "Second snippet spread", Href: "https://beta.example/"},
		{Title: "Gamma", Name: "Third snippet", Href: "https://gamma.example/"},
	}
	if len(got.Results) != len(want) {
		t.Fatalf("got %d results, want %d: %+v", len(got.Results), len(want), got.Results)
	}
	for i := range want {
		if got.Results[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got.Results[i], want[i])
		}
	}
}

func TestExtract_CountMatchesOrganicItems(t *testing.T) {
	for _, n := range []int{0, 1, 5, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			items := make([]string, 0, n)
			for i := 0; i < n; i++ {
				items = append(items, reactItem("organic", fmt.Sprintf("T%d", i), fmt.Sprintf("https://r%d.example/", i), "s"))
			}
			got, err := Extract(reactPage(items...))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(got.Results) != n {
				t.Fatalf("got %d results, want %d", len(got.Results), n)
			}
			for i, r := range got.Results {
				if r.Title != fmt.Sprintf("T%d", i) {
					t.Errorf("result %d out of order: %q", i, r.Title)
				}
			}
		})
	}
}

func TestExtract_MissingSnippetKeepsRecord(t *testing.T) {
	page := reactPage(
		reactItem("organic", "Alpha", "https://alpha.example/", ""),
		reactItem("organic", "Beta", "https://beta.example/", "has snippet"),
	)

	got, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(got.Results))
	}
	if got.Results[0].Name != "" {
		t.Errorf("missing snippet should give empty name, got %q", got.Results[0].Name)
	}
	if got.Results[0].Title != "Alpha" || got.Results[0].Href != "https://alpha.example/" {
		t.Errorf("other fields lost: %+v", got.Results[0])
	}
}

func TestExtract_MissingLinkAndTitle(t *testing.T) {
	page := reactPage(`<li data-layout="organic"><article><div></div><div><div><div><p>only text</p></div></div></div></article></li>`)

	got, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(got.Results))
	}
	want := models.SearchResult{Title: "", Name: "only text", Href: ""}
	if got.Results[0] != want {
		t.Errorf("got %+v, want %+v", got.Results[0], want)
	}
}

func TestExtract_EmptyContainerIsZeroResults(t *testing.T) {
	got, err := Extract(reactPage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Results == nil {
		t.Error("results should be an empty slice, not nil")
	}
	if len(got.Results) != 0 {
		t.Errorf("got %d results, want 0", len(got.Results))
	}
}

func TestExtract_UnknownLayout(t *testing.T) {
	_, err := Extract(`<html><body><a href="/x">x</a><div class="new-results"></div></body></html>`)
	if !errors.Is(err, ErrNoResultStructure) {
		t.Fatalf("err = %v, want ErrNoResultStructure", err)
	}
}

func TestExtract_HTMLLayout(t *testing.T) {
	page := `<html><body><div id="links" class="results">
	<div class="result results_links web-result">
		<div class="links_main result__body">
			<h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc">The Go Programming Language</a></h2>
			<a class="result__snippet" href="#">Go is an <b>open source</b> programming language.</a>
		</div>
	</div>
	<div class="result result--ad">
		<h2 class="result__title"><a class="result__a" href="https://ads.example/">Ad</a></h2>
	</div>
	<div class="result results_links web-result">
		<div class="links_main result__body">
			<h2 class="result__title"><a class="result__a" href="https://pkg.go.dev/">Go Packages</a></h2>
		</div>
	</div>
	</div></body></html>`

	got, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Layout != "html" {
		t.Errorf("layout = %q, want html", got.Layout)
	}
	want := []models.SearchResult{
		{Title: "The Go Programming Language", Name: "Go is an open source programming language.", Href: "https://go.dev/"},
		{Title: "Go Packages", Name: "", Href: "https://pkg.go.dev/"},
	}
	if len(got.Results) != len(want) {
		t.Fatalf("got %d results, want %d: %+v", len(got.Results), len(want), got.Results)
	}
	for i := range want {
		if got.Results[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got.Results[i], want[i])
		}
	}
}

func TestReadySelector_ScriptedContainersOnly(t *testing.T) {
	sel := ReadySelector()
	if sel != "ol.react-results--main" {
		t.Errorf("ReadySelector() = %q", sel)
	}
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"redirect", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1&rut=x", "https://example.com/a?b=1"},
		{"absolute redirect", "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2F", "https://example.com/"},
		{"plain link", "https://example.com/", "https://example.com/"},
		{"redirect without target", "//duckduckgo.com/l/?rut=x", "//duckduckgo.com/l/?rut=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapRedirect(tt.in); got != tt.want {
				t.Errorf("unwrapRedirect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
