// Package pulllist persists the user's intended comic releases in SQLite and
// owns the release data model.
//
// The store is the sole durable state across runs. It is a forward-looking
// worklist, not a history: reconciliation replaces the full contents in one
// transaction and prunes anything whose release date has passed. Fulfillment
// is never recorded here; run outcomes are reported out of band.
//
// A missing, corrupt, or schema-incompatible database is treated as an empty
// store. The incompatible file is moved aside so the next import repopulates
// a fresh one.
package pulllist
