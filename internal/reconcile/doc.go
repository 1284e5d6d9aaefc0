// Package reconcile computes the differences between two route datasets.
//
// Differences are returned as Fix values: plain data carrying a kind, the
// route name, an optional field and the old and new values. A single Apply
// function dispatches on the kind, so a fix never captures state from the
// loop that produced it.
package reconcile
