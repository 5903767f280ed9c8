// Package downloader drives the per-release search and queue pass.
//
// The orchestrator walks the selected releases strictly in order, asks the
// search service for ranked candidates, applies the dedup policy, and queues
// the first usable candidate. One release's failure never aborts the run; the
// caller receives a report with one terminal outcome per release.
package downloader
