// Package reconcile merges imported pull-list batches into the persisted set
// and selects the releases in scope for a search pass.
//
// Both operations are pure functions of their inputs and a caller-supplied
// date. Only the run manager commits merge results to the store, and it does
// so as one atomic replace before any download work starts.
package reconcile
