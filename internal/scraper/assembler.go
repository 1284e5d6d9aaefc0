package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/mtb-routes/internal/fieldparse"
	"github.com/pfrederiksen/mtb-routes/internal/metablock"
	"github.com/pfrederiksen/mtb-routes/internal/route"
)

const (
	titleSelector = "a.contentpagetitle"
	dateSelector  = "span.createdate"
	blockSelector = "p"

	// reducedTraceMarker tags the legacy "cut down to 500 points" downloads.
	reducedTraceMarker = "нарязани до 500"
)

var traceExtensions = []string{".gpx", ".zip"}

// ErrorKind classifies a structural page failure.
type ErrorKind int

const (
	EmptyContent ErrorKind = iota + 1
	MissingName
	AmbiguousName
	MissingDate
	AmbiguousDate
	InvalidDate
	NoTraceLinks
	AmbiguousMetadataBlocks
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyContent:
		return "empty content"
	case MissingName:
		return "name not found"
	case AmbiguousName:
		return "more than one name"
	case MissingDate:
		return "date not found"
	case AmbiguousDate:
		return "more than one date"
	case InvalidDate:
		return "unrecognized date"
	case NoTraceLinks:
		return "no links"
	case AmbiguousMetadataBlocks:
		return "metadata block count must be exactly 1"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// StructuralError reports a page that cannot produce a route record.
type StructuralError struct {
	Kind   ErrorKind
	URL    string
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("parsing %s: %s (%s)", e.URL, e.Kind, e.Detail)
	}
	return fmt.Sprintf("parsing %s: %s", e.URL, e.Kind)
}

// Assembler builds route records from page HTML.
type Assembler struct {
	registry  *fieldparse.Registry
	extractor *metablock.Extractor
}

// NewAssembler creates an assembler with explicit parser and label tables.
func NewAssembler(registry *fieldparse.Registry, extractor *metablock.Extractor) *Assembler {
	return &Assembler{
		registry:  registry,
		extractor: extractor,
	}
}

// Assemble parses one route page. link is the page's canonical URL. With
// relax set, the one-metadata-block rule is lifted and the first block, if
// any, is merged.
//
// On a structural failure it returns a nil record, the warnings gathered so
// far and a *StructuralError.
func (a *Assembler) Assemble(content, link string, relax bool) (*route.Record, []string, error) {
	fail := func(kind ErrorKind, detail string, warnings []string) (*route.Record, []string, error) {
		return nil, warnings, &StructuralError{Kind: kind, URL: link, Detail: detail}
	}

	if len(content) == 0 {
		return fail(EmptyContent, "", nil)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}

	titles := doc.Find(titleSelector)
	switch titles.Length() {
	case 0:
		return fail(MissingName, "", nil)
	case 1:
	default:
		return fail(AmbiguousName, fmt.Sprintf("%d titles", titles.Length()), nil)
	}
	name := metablock.CollapseSpace(titles.Text())
	if name == "" {
		return fail(MissingName, "empty title", nil)
	}

	dates := doc.Find(dateSelector)
	switch dates.Length() {
	case 0:
		return fail(MissingDate, "", nil)
	case 1:
	default:
		return fail(AmbiguousDate, fmt.Sprintf("%d dates", dates.Length()), nil)
	}
	published, err := ParseDate(dates.Text())
	if err != nil {
		return fail(InvalidDate, err.Error(), nil)
	}

	traces := findTraceLinks(doc, link)
	if len(traces) == 0 {
		return fail(NoTraceLinks, "", nil)
	}

	var (
		blocks   []fieldparse.Result
		warnings []string
	)
	doc.Find(blockSelector).Each(func(_ int, p *goquery.Selection) {
		block, ok := a.extractor.Extract(strippedStrings(p))
		if !ok {
			return
		}
		res := a.registry.ParseBlock(block)
		blocks = append(blocks, res)
		warnings = append(warnings, res.Warnings...)
	})

	if !relax && len(blocks) != 1 {
		return fail(AmbiguousMetadataBlocks, fmt.Sprintf("%d metadata blocks found", len(blocks)), warnings)
	}

	rec := &route.Record{
		Name:   name,
		Date:   published,
		Link:   link,
		Traces: traces,
	}
	if len(blocks) > 0 {
		for _, f := range route.MetadataFields {
			v, ok := blocks[0].Values[f]
			if !ok {
				continue
			}
			if err := rec.SetValue(f, v); err != nil {
				warnings = append(warnings, fmt.Sprintf("Dropping %s: %v", f, err))
			}
		}
	}

	return rec, warnings, nil
}

// findTraceLinks returns absolute URLs of GPS trace downloads in page order.
func findTraceLinks(doc *goquery.Document, pageURL string) []string {
	base, baseErr := url.Parse(pageURL)

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !hasTraceExtension(href) {
			return
		}
		if strings.Contains(strings.ToLower(a.Text()), reducedTraceMarker) {
			return
		}
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		links = append(links, href)
	})
	return links
}

func hasTraceExtension(href string) bool {
	lower := strings.ToLower(href)
	for _, ext := range traceExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// strippedStrings returns every non-blank text node under the selection,
// trimmed, in document order.
func strippedStrings(sel *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := metablock.CollapseSpace(n.Data); s != "" {
				out = append(out, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
