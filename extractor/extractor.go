// Package extractor maps a rendered results page into ordered search results.
//
// All knowledge of the provider's markup lives in layout.go; a layout change
// on the provider side is fixed there and nowhere else.
package extractor

import (
	"errors"
	"strings"

	"github.com/EvanZhouDev/scope-search/models"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoResultStructure is returned when none of the known layouts match the
// document. It separates "the page changed shape" from "zero results".
var ErrNoResultStructure = errors.New("extractor: no known results layout in document")

// Extraction is the outcome of a successful Extract.
type Extraction struct {
	// Layout is the name of the layout variant that matched.
	Layout string

	// Results are in document order. Never nil.
	Results []models.SearchResult
}

// Extract parses rawHTML and returns the organic results of the first
// layout whose container is present.
//
// A result item missing its title, snippet or link still produces a record
// with that field set to "".
func Extract(rawHTML string) (*Extraction, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	for _, l := range layouts {
		if doc.FindMatcher(l.Container).Length() == 0 {
			continue
		}
		return &Extraction{Layout: l.Name, Results: extractItems(doc, l)}, nil
	}
	return nil, ErrNoResultStructure
}

func extractItems(doc *goquery.Document, l Layout) []models.SearchResult {
	items := doc.FindMatcher(l.Item)
	results := make([]models.SearchResult, 0, items.Length())

	items.Each(func(_ int, item *goquery.Selection) {
		href, _ := item.FindMatcher(l.Link).First().Attr("href")
		if l.CleanHref != nil && href != "" {
			href = l.CleanHref(href)
		}
		results = append(results, models.SearchResult{
			Title: collapseSpace(item.FindMatcher(l.Title).Text()),
			Name:  collapseSpace(item.FindMatcher(l.Snippet).Text()),
			Href:  strings.TrimSpace(href),
		})
	})
	return results
}

// collapseSpace trims and folds internal whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
