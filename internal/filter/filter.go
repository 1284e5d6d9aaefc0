// Package filter selects routes from a dataset by publication date, name,
// trailhead, difficulty and length.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Difficulties = []route.Difficulty{route.DifficultyT4, route.DifficultyT5}
//	f.MinLength, _ = filter.ParseLengthBound("40")
//
//	hard := f.Apply(dataset.Routes)
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// Filter represents route selection criteria
type Filter struct {
	// Publication date range, inclusive
	DateFrom *time.Time
	DateTo   *time.Time

	// Case-insensitive substring matches; any one must match
	Names      []string
	Trailheads []string

	// At least one of the route's difficulty codes must be listed
	Difficulties []route.Difficulty

	// Length bounds in kilometres, inclusive. Routes without a length never
	// satisfy a bound.
	MinLength *decimal.Decimal
	MaxLength *decimal.Decimal
}

var folder = cases.Lower(language.Bulgarian)

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all routes until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Names) == 0 &&
		len(f.Trailheads) == 0 &&
		len(f.Difficulties) == 0 &&
		f.MinLength == nil &&
		f.MaxLength == nil
}

// Matches checks if a route matches all active filter criteria.
// An empty filter matches all routes.
func (f *Filter) Matches(r *route.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}

	if len(f.Names) > 0 && !containsAny(r.Name, f.Names) {
		return false
	}

	if len(f.Trailheads) > 0 {
		if r.Trailhead == nil || !containsAny(*r.Trailhead, f.Trailheads) {
			return false
		}
	}

	if len(f.Difficulties) > 0 {
		matched := false
		for _, d := range r.Difficulty {
			if slices.Contains(f.Difficulties, d) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MinLength != nil && (r.Length == nil || r.Length.LessThan(*f.MinLength)) {
		return false
	}
	if f.MaxLength != nil && (r.Length == nil || r.Length.GreaterThan(*f.MaxLength)) {
		return false
	}

	return true
}

func containsAny(s string, needles []string) bool {
	s = folder.String(s)
	for _, n := range needles {
		if strings.Contains(s, folder.String(n)) {
			return true
		}
	}
	return false
}

// Apply returns the matching routes. If the filter is empty the input is
// returned unchanged.
func (f *Filter) Apply(routes []*route.Record) []*route.Record {
	if f.IsEmpty() {
		return routes
	}

	var filtered []*route.Record
	for _, r := range routes {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2014-01-01 | Difficulty: T4, T5 | Length: >= 40"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, "From: "+f.DateFrom.Format(time.DateOnly))
	}
	if f.DateTo != nil {
		parts = append(parts, "To: "+f.DateTo.Format(time.DateOnly))
	}
	if len(f.Names) > 0 {
		parts = append(parts, "Names: "+strings.Join(f.Names, ", "))
	}
	if len(f.Trailheads) > 0 {
		parts = append(parts, "Trailheads: "+strings.Join(f.Trailheads, ", "))
	}
	if len(f.Difficulties) > 0 {
		parts = append(parts, "Difficulty: "+strings.Trim(route.FormatValue(f.Difficulties), "[]"))
	}
	if f.MinLength != nil {
		parts = append(parts, fmt.Sprintf("Length: >= %s", f.MinLength))
	}
	if f.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("Length: <= %s", f.MaxLength))
	}

	return strings.Join(parts, " | ")
}
