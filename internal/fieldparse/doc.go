// Package fieldparse turns the labeled text of a route metadata block into
// typed field values.
//
// Each parser is a pure function from raw text to a value or an error wrapping
// ErrNoMatch. Parsers never panic on malformed input, and a valid falsy value
// such as "water not required" is returned as a value, never as a failure.
// The Registry maps canonical field names to parsers and is built once and
// passed to the page assembler as a dependency.
package fieldparse
