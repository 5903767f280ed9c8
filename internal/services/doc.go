// Package services defines the error taxonomy shared by external
// collaborator clients.
//
// Clients wrap failures with sentinel markers so callers can classify them
// with errors.Is without depending on wire-level details: configuration
// problems abort a run, duplicates become skip outcomes, everything else a
// release-level failure.
package services
