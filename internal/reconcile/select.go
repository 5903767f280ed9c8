package reconcile

import (
	"time"

	"comicgrabr/internal/pulllist"
)

// Mode controls which releases a search pass covers.
type Mode int

const (
	// TodayOnly selects releases dated exactly today.
	TodayOnly Mode = iota
	// TodayAndPast selects releases dated today or earlier.
	TodayAndPast
)

// String names the mode for logs.
func (m Mode) String() string {
	if m == TodayAndPast {
		return "today-and-past"
	}
	return "today-only"
}

// Select returns the releases in scope for a search pass, in deterministic
// order: release date ascending, then series title, then issue number.
func Select(releases []pulllist.Release, mode Mode, today time.Time) []pulllist.Release {
	today = pulllist.Day(today)

	var selected []pulllist.Release
	for _, rel := range releases {
		day := pulllist.Day(rel.ReleaseDate)
		switch mode {
		case TodayAndPast:
			if !day.After(today) {
				selected = append(selected, rel)
			}
		default:
			if day.Equal(today) {
				selected = append(selected, rel)
			}
		}
	}
	pulllist.Sort(selected)
	return selected
}

// UpcomingOn returns releases dated exactly on the given day, sorted by title.
// Used for the next-Wednesday digest notification.
func UpcomingOn(releases []pulllist.Release, day time.Time) []pulllist.Release {
	day = pulllist.Day(day)
	var upcoming []pulllist.Release
	for _, rel := range releases {
		if pulllist.Day(rel.ReleaseDate).Equal(day) {
			upcoming = append(upcoming, rel)
		}
	}
	pulllist.Sort(upcoming)
	return upcoming
}

// NextWednesday returns the date of the Wednesday strictly after today.
func NextWednesday(today time.Time) time.Time {
	today = pulllist.Day(today)
	days := (int(time.Wednesday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}
