package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RoutePagePrefix is the path prefix of every route page on the site.
const RoutePagePrefix = "/index.php/trails/gpstracks/"

// DiscoverPages lists the unique route page paths linked from an index page,
// in order of first appearance.
func DiscoverPages(r io.Reader, prefix string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	pages := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, prefix) || seen[href] {
			return
		}
		seen[href] = true
		pages = append(pages, href)
	})

	return pages, nil
}
