// Package storage provides file persistence for mtb-routes.
//
// The dataset file is a JSON document {"routes": [...]} sorted by date and
// name, written with a temp-file, fsync, rename sequence so that a crash
// never leaves a truncated dataset behind. The package also reads the page
// list produced by index discovery and the page-exception list.
package storage
