// Package workflow ties a run together: import the pull list, reconcile and
// commit the store, drive the download pass, and report the outcome.
//
// A run holds an exclusive file lock for its duration so overlapping
// invocations (cron plus a manual run) cannot race on the store. The import
// and commit happen as one unit before any search work starts, so a run
// interrupted during the download phase never leaves the store half-written.
package workflow
