// Package metablock splits a passage of labeled page text into per-field
// strings keyed by canonical field name.
package metablock

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// DefaultLabels maps the site's normalized field labels to field names.
var DefaultLabels = map[string]route.Field{
	"изходна точка":               route.FieldTrailhead,
	"дължина":                     route.FieldLength,
	"денивелация":                 route.FieldAscent,
	"изкачване":                   route.FieldAscent,
	"продължителност":             route.FieldDuration,
	"вода":                        route.FieldWater,
	"храна":                       route.FieldFood,
	"терен":                       route.FieldTerrains,
	"ниво на техническа трудност": route.FieldDifficulty,
	"физическо натоварване":       route.FieldStrenuousness,
}

// Extractor recognizes field labels among text fragments.
type Extractor struct {
	labels map[string]route.Field
}

// New creates an extractor using DefaultLabels.
func New() *Extractor {
	return NewWithLabels(DefaultLabels)
}

// NewWithLabels creates an extractor for a custom label table. Keys are
// normalized the same way fragments are.
func NewWithLabels(labels map[string]route.Field) *Extractor {
	table := make(map[string]route.Field, len(labels))
	for label, f := range labels {
		table[normalizeLabel(label)] = f
	}
	return &Extractor{labels: table}
}

// CollapseSpace replaces every whitespace run with a single space and trims
// the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeLabel(s string) string {
	s = cases.Lower(language.Bulgarian).String(CollapseSpace(s))
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
}

// Label returns the field a fragment names, if it is a label.
func (e *Extractor) Label(fragment string) (route.Field, bool) {
	f, ok := e.labels[normalizeLabel(fragment)]
	return f, ok
}

// Qualifies reports whether any fragment is a known label.
func (e *Extractor) Qualifies(fragments []string) bool {
	for _, frag := range fragments {
		if _, ok := e.Label(frag); ok {
			return true
		}
	}
	return false
}

// Extract groups fragments under the label that precedes them. A label starts
// a fresh accumulator for its field; fragments before the first label are
// dropped. The second result is false when the fragments hold no label.
func (e *Extractor) Extract(fragments []string) (map[route.Field]string, bool) {
	if !e.Qualifies(fragments) {
		return nil, false
	}

	parts := make(map[route.Field][]string)
	var current route.Field
	for _, frag := range fragments {
		frag = CollapseSpace(frag)
		if frag == "" {
			continue
		}
		if f, ok := e.Label(frag); ok {
			current = f
			parts[f] = nil
			continue
		}
		if current != "" {
			parts[current] = append(parts[current], frag)
		}
	}

	block := make(map[route.Field]string, len(parts))
	for f, values := range parts {
		if len(values) > 0 {
			block[f] = strings.Join(values, " ")
		}
	}
	return block, true
}
