package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByName   SortOrder = "name"
	SortByLength SortOrder = "length"
)

// sortRoutes sorts routes based on the specified sort order
func sortRoutes(routes []*route.Record, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(routes, func(i, j int) bool {
			return compareByDate(routes[i], routes[j])
		})
	case SortByName:
		sort.SliceStable(routes, func(i, j int) bool {
			a, b := strings.ToLower(routes[i].Name), strings.ToLower(routes[j].Name)
			if a != b {
				return a < b
			}
			return compareByDate(routes[i], routes[j])
		})
	case SortByLength:
		sort.SliceStable(routes, func(i, j int) bool {
			return compareByLength(routes[i], routes[j])
		})
	}
}

// compareByDate orders by publication date, then by name.
func compareByDate(i, j *route.Record) bool {
	if !i.Date.Equal(j.Date) {
		return i.Date.Before(j.Date)
	}
	return i.Name < j.Name
}

// compareByLength puts the longest routes first. Routes without a length
// go last, by date.
func compareByLength(i, j *route.Record) bool {
	switch {
	case i.Length != nil && j.Length != nil:
		if c := i.Length.Cmp(*j.Length); c != 0 {
			return c > 0
		}
	case i.Length != nil:
		return true
	case j.Length != nil:
		return false
	}
	return compareByDate(i, j)
}
