package route

import (
	"sort"
	"strings"
)

// Dataset is an ordered collection of routes keyed by name.
type Dataset struct {
	Routes []*Record `json:"routes"`
}

// NewDataset creates a dataset holding the given records in order.
func NewDataset(records ...*Record) *Dataset {
	d := &Dataset{Routes: make([]*Record, 0, len(records))}
	d.Routes = append(d.Routes, records...)
	return d
}

// Len returns the number of routes.
func (d *Dataset) Len() int {
	return len(d.Routes)
}

// Get returns the first route with the given name.
func (d *Dataset) Get(name string) (*Record, bool) {
	for _, r := range d.Routes {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Put stores r, replacing the route with the same name if there is one.
// It reports whether a route was replaced.
func (d *Dataset) Put(r *Record) bool {
	for i, existing := range d.Routes {
		if existing.Name == r.Name {
			d.Routes[i] = r
			return true
		}
	}
	d.Routes = append(d.Routes, r)
	return false
}

// Remove deletes the route with the given name and reports whether it existed.
func (d *Dataset) Remove(name string) bool {
	for i, r := range d.Routes {
		if r.Name == name {
			d.Routes = append(d.Routes[:i], d.Routes[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns route names in dataset order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Routes))
	for i, r := range d.Routes {
		names[i] = r.Name
	}
	return names
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{Routes: make([]*Record, len(d.Routes))}
	for i, r := range d.Routes {
		c.Routes[i] = r.Clone()
	}
	return c
}

// Sort orders routes by date, then by name.
func (d *Dataset) Sort() {
	sort.SliceStable(d.Routes, func(i, j int) bool {
		a, b := d.Routes[i], d.Routes[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return strings.Compare(a.Name, b.Name) < 0
	})
}

// DuplicateNames returns each name carried by more than one route, in order
// of first appearance.
func (d *Dataset) DuplicateNames() []string {
	counts := make(map[string]int, len(d.Routes))
	var dups []string
	for _, r := range d.Routes {
		counts[r.Name]++
		if counts[r.Name] == 2 {
			dups = append(dups, r.Name)
		}
	}
	return dups
}
