package reconcile

import (
	"errors"
	"fmt"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// ErrUnknownRoute is returned when a fix targets a route the dataset lacks.
var ErrUnknownRoute = errors.New("unknown route")

// Kind identifies the shape of a Fix.
type Kind int

const (
	AddRoute Kind = iota + 1
	DeleteRoute
	SetField
	DeleteField
)

func (k Kind) String() string {
	switch k {
	case AddRoute:
		return "add-route"
	case DeleteRoute:
		return "delete-route"
	case SetField:
		return "set-field"
	case DeleteField:
		return "delete-field"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Fix is one atomic difference between two datasets.
//
// For AddRoute New holds the *route.Record to insert; for DeleteRoute Old
// holds the removed record. Field-level fixes carry the field values, with
// New nil for DeleteField.
type Fix struct {
	Kind  Kind
	Route string
	Field route.Field
	Old   any
	New   any
}

// Description renders the fix for the operator.
func (f Fix) Description() string {
	switch f.Kind {
	case AddRoute:
		return "New route added"
	case DeleteRoute:
		return "Route deleted"
	case SetField, DeleteField:
		return fmt.Sprintf("%s: %s -> %s", f.Field, route.FormatValue(f.Old), route.FormatValue(f.New))
	}
	return f.Kind.String()
}

func (f Fix) String() string {
	return f.Route + ": " + f.Description()
}

// Apply performs the fix on d.
func (f Fix) Apply(d *route.Dataset) error {
	switch f.Kind {
	case AddRoute:
		rec, ok := f.New.(*route.Record)
		if !ok || rec == nil {
			return fmt.Errorf("add %q: fix carries no record", f.Route)
		}
		d.Put(rec.Clone())
		return nil

	case DeleteRoute:
		if !d.Remove(f.Route) {
			return fmt.Errorf("delete %q: %w", f.Route, ErrUnknownRoute)
		}
		return nil

	case SetField:
		rec, ok := d.Get(f.Route)
		if !ok {
			return fmt.Errorf("set %s on %q: %w", f.Field, f.Route, ErrUnknownRoute)
		}
		if err := rec.SetValue(f.Field, f.New); err != nil {
			return fmt.Errorf("set %s on %q: %w", f.Field, f.Route, err)
		}
		return nil

	case DeleteField:
		rec, ok := d.Get(f.Route)
		if !ok {
			return fmt.Errorf("delete %s on %q: %w", f.Field, f.Route, ErrUnknownRoute)
		}
		if err := rec.Clear(f.Field); err != nil {
			return fmt.Errorf("delete %s on %q: %w", f.Field, f.Route, err)
		}
		return nil
	}
	return fmt.Errorf("unknown fix kind %d", int(f.Kind))
}
