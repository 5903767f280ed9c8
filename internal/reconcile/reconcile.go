package reconcile

import (
	"time"

	"comicgrabr/internal/pulllist"
)

// Merge combines the persisted releases with a freshly imported batch and
// prunes anything already released before today. Imported records win on key
// collision; the import is the authoritative copy of a release. An empty
// import is legal: pruning still applies to the existing records.
//
// Merge is a pure function of its inputs and the provided date so it can be
// tested without a store.
func Merge(existing, imported []pulllist.Release, today time.Time) []pulllist.Release {
	today = pulllist.Day(today)

	merged := make(map[string]pulllist.Release, len(existing)+len(imported))
	for _, rel := range existing {
		merged[rel.Key()] = rel
	}
	for _, rel := range imported {
		merged[rel.Key()] = rel
	}

	result := make([]pulllist.Release, 0, len(merged))
	for _, rel := range merged {
		if pulllist.Day(rel.ReleaseDate).Before(today) {
			continue
		}
		result = append(result, rel)
	}
	pulllist.Sort(result)
	return result
}
