// Package fetch downloads route pages politely and caches them.
//
// A Client issues rate-limited GET requests with a fixed user agent. When a
// Cache is attached, successful non-empty responses are stored in a SQLite
// database keyed by URL and served from there on later runs. Empty bodies
// are never cached: a cached empty page would otherwise surface forever as
// an empty-content parse failure.
package fetch
