// Package patch walks an operator through a list of fixes.
//
// A Session owns a working copy of the persisted dataset. Every accepted fix
// is applied to the copy and the whole copy is saved before the next fix is
// offered, so an aborted session leaves exactly the accepted fixes on disk.
package patch
