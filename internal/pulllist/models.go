package pulllist

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateFormat is the canonical storage format for release dates.
const DateFormat = "2006-01-02"

// Release is a single comic issue the user intends to acquire.
type Release struct {
	SeriesTitle string
	IssueNumber string
	ReleaseDate time.Time
	Publisher   string
}

// Key returns the identity key for a release. Two records with the same key
// describe the same release and must not duplicate in storage.
func (r Release) Key() string {
	return strings.Join([]string{r.SeriesTitle, r.IssueNumber, r.ReleaseDate.Format(DateFormat)}, "\x1f")
}

// DisplayTitle renders the release for logs and notifications.
func (r Release) DisplayTitle() string {
	if issue := strings.TrimSpace(r.IssueNumber); issue != "" {
		return fmt.Sprintf("%s #%s", r.SeriesTitle, issue)
	}
	return r.SeriesTitle
}

// DateString formats the release date in canonical form.
func (r Release) DateString() string {
	return r.ReleaseDate.Format(DateFormat)
}

// ParseDate parses a canonical release date into a normalized UTC day value.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateFormat, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse release date %q: %w", value, err)
	}
	return parsed, nil
}

// Day truncates a time to its calendar date in the time's location.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Sort orders releases deterministically: release date ascending, then series
// title, then issue number. Repeated runs over identical input produce an
// identical search order.
func Sort(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		if !a.ReleaseDate.Equal(b.ReleaseDate) {
			return a.ReleaseDate.Before(b.ReleaseDate)
		}
		if a.SeriesTitle != b.SeriesTitle {
			return a.SeriesTitle < b.SeriesTitle
		}
		return a.IssueNumber < b.IssueNumber
	})
}
