// Package textutil provides text processing helpers for search query
// derivation.
//
// Query derivation is pure and stable: the same series title and issue number
// always yield the same query string, which keeps search outcomes reproducible.
package textutil
