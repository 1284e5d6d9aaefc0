package reconcile

import (
	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// Ignored is a set of route names or links excluded from reconciliation.
type Ignored map[string]bool

func (ig Ignored) matches(recs ...*route.Record) bool {
	for _, r := range recs {
		if r == nil {
			continue
		}
		if ig[r.Name] || ig[r.Link] {
			return true
		}
	}
	return false
}

// ComputeDiff returns the fixes that turn previous into current.
//
// Fixes for one route are always consecutive. Across routes the order is:
// additions in current's order, deletions in previous's order, then
// modifications in current's order. That order carries no meaning and
// callers must not depend on it.
func ComputeDiff(previous, current *route.Dataset, ignored Ignored) []Fix {
	if previous == nil {
		previous = route.NewDataset()
	}
	if current == nil {
		current = route.NewDataset()
	}

	prevIndex := index(previous)
	currIndex := index(current)

	var fixes []Fix

	for _, name := range uniqueNames(current) {
		rec := currIndex[name]
		if _, exists := prevIndex[name]; exists || ignored.matches(rec) {
			continue
		}
		fixes = append(fixes, Fix{Kind: AddRoute, Route: name, New: rec.Clone()})
	}

	for _, name := range uniqueNames(previous) {
		rec := prevIndex[name]
		if _, exists := currIndex[name]; exists || ignored.matches(rec) {
			continue
		}
		fixes = append(fixes, Fix{Kind: DeleteRoute, Route: name, Old: rec.Clone()})
	}

	for _, name := range uniqueNames(current) {
		prev, exists := prevIndex[name]
		curr := currIndex[name]
		if !exists || ignored.matches(prev, curr) {
			continue
		}
		fixes = append(fixes, DiffRecords(prev, curr)...)
	}

	return fixes
}

// DiffRecords compares two versions of the same route field by field.
func DiffRecords(previous, current *route.Record) []Fix {
	var fixes []Fix
	for _, f := range route.Fields {
		oldValue, _ := previous.Value(f)
		newValue, _ := current.Value(f)
		if route.ValuesEqual(oldValue, newValue) {
			continue
		}
		if newValue == nil {
			fixes = append(fixes, Fix{Kind: DeleteField, Route: current.Name, Field: f, Old: oldValue})
			continue
		}
		fixes = append(fixes, Fix{Kind: SetField, Route: current.Name, Field: f, Old: oldValue, New: newValue})
	}
	return fixes
}

// index maps names to the first record carrying them.
func index(d *route.Dataset) map[string]*route.Record {
	m := make(map[string]*route.Record, d.Len())
	for _, r := range d.Routes {
		if _, ok := m[r.Name]; !ok {
			m[r.Name] = r
		}
	}
	return m
}

func uniqueNames(d *route.Dataset) []string {
	seen := make(map[string]bool, d.Len())
	names := make([]string, 0, d.Len())
	for _, r := range d.Routes {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
	}
	return names
}
