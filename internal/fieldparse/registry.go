package fieldparse

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// ErrMissingParser is returned for a field with no registered parser.
var ErrMissingParser = errors.New("missing parser")

// Parser converts raw block text into a field value.
type Parser func(raw string) (any, error)

// typed adapts a typed parser to the Parser signature.
func typed[T any](fn func(string) (T, error)) Parser {
	return func(raw string) (any, error) {
		v, err := fn(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Registry maps canonical field names to parsers.
type Registry struct {
	parsers map[route.Field]Parser
}

// NewRegistry creates the registry for every metadata field.
func NewRegistry() *Registry {
	return NewRegistryWith(map[route.Field]Parser{
		route.FieldTrailhead:     typed(ParseText),
		route.FieldLength:        typed(ParseLength),
		route.FieldAscent:        typed(ParseAscent),
		route.FieldDuration:      typed(ParseText),
		route.FieldWater:         typed(ParseWater),
		route.FieldFood:          typed(ParseFood),
		route.FieldTerrains:      typed(ParseTerrains),
		route.FieldDifficulty:    typed(ParseDifficulty),
		route.FieldStrenuousness: typed(ParseStrenuousness),
	})
}

// NewRegistryWith creates a registry from an explicit parser table.
func NewRegistryWith(parsers map[route.Field]Parser) *Registry {
	table := make(map[route.Field]Parser, len(parsers))
	for f, p := range parsers {
		table[f] = p
	}
	return &Registry{parsers: table}
}

// Parse runs the parser registered for field f.
func (r *Registry) Parse(f route.Field, raw string) (any, error) {
	p, ok := r.parsers[f]
	if !ok {
		return nil, fmt.Errorf("%s: %w", f, ErrMissingParser)
	}
	return p(raw)
}

// Result holds the values parsed from one metadata block.
type Result struct {
	Values   map[route.Field]any
	Warnings []string
}

// ParseBlock parses every field of a block. Failed fields are left out of
// Values and reported in Warnings; parsing always continues.
func (r *Registry) ParseBlock(block map[route.Field]string) Result {
	res := Result{Values: make(map[route.Field]any, len(block))}
	for _, f := range blockOrder(block) {
		raw := block[f]
		v, err := r.Parse(f, raw)
		switch {
		case errors.Is(err, ErrMissingParser):
			res.Warnings = append(res.Warnings, fmt.Sprintf("Missing parser for %s", f))
		case err != nil:
			res.Warnings = append(res.Warnings, fmt.Sprintf("Parser for %s failed on %q: %v", f, raw, err))
		default:
			res.Values[f] = v
		}
	}
	return res
}

// blockOrder lists block fields in metadata order, then unknown fields sorted.
func blockOrder(block map[route.Field]string) []route.Field {
	order := make([]route.Field, 0, len(block))
	known := make(map[route.Field]bool, len(route.MetadataFields))
	for _, f := range route.MetadataFields {
		known[f] = true
		if _, ok := block[f]; ok {
			order = append(order, f)
		}
	}
	var extra []route.Field
	for f := range block {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}
