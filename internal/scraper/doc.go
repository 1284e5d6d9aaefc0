// Package scraper provides HTML parsing for mtb-bg.com route pages.
//
// The scraper package turns one route page into a route record. It checks the
// page structure (a single title, a single publication date, at least one GPS
// trace link), extracts the labeled metadata paragraphs and parses them into
// typed fields. Structural problems are reported as *StructuralError values
// and are fatal for that page only; field-level problems become warnings.
// The package also discovers route page links on the site index.
package scraper
