package textutil

import "strings"

// queryReplacer drops characters known to degrade hub search quality.
var queryReplacer = strings.NewReplacer(
	"#", "",
	":", "",
)

// SearchQuery derives a hub search string from a series title and issue
// designator. '#' and ':' are removed and whitespace is collapsed so the same
// release always produces the same query.
func SearchQuery(seriesTitle, issueNumber string) string {
	query := seriesTitle
	if issue := strings.TrimSpace(issueNumber); issue != "" {
		query += " " + issue
	}
	return CollapseWhitespace(queryReplacer.Replace(query))
}

// CollapseWhitespace trims a string and folds interior whitespace runs into
// single spaces.
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
