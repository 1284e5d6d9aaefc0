// Package route provides the record types for scraped trail routes.
//
// The route package defines the route record, the closed list of fields a
// record can carry, and the dataset that collects records keyed by name.
// Optional fields are pointers or nil slices so that an absent value is never
// confused with a present zero value: an ascent of 0 m and a water value of
// false are both present.
package route
