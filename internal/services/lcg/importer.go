package lcg

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"comicgrabr/internal/logging"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services"
	"comicgrabr/internal/textutil"
)

// Column headers in the pull-list export. Comic and Release are required;
// Issue and Publisher are filled in when present.
const (
	columnComic     = "Comic"
	columnRelease   = "Release"
	columnIssue     = "Issue"
	columnPublisher = "Publisher"
)

// exportDateFormats are the date layouts seen in exports, tried in order.
var exportDateFormats = []string{"2006-01-02", "01/02/2006"}

// ImportFile parses a previously downloaded export from disk.
func ImportFile(path string, logger *slog.Logger) ([]pulllist.Release, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "lcg", "open export file", path, err)
	}
	defer file.Close()

	releases, err := ParseExport(file, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lcg", "parse export file", path, err)
	}
	return releases, nil
}

// ParseExport reads a pull-list export and returns one release per usable row.
// Rows with a missing title, a missing date, or a date in an unknown format
// are skipped with a warning. An export with a header but no rows yields an
// empty slice and no error.
func ParseExport(r io.Reader, logger *slog.Logger) ([]pulllist.Release, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	comicIdx, ok := columns[columnComic]
	if !ok {
		return nil, fmt.Errorf("export is missing the %q column", columnComic)
	}
	releaseIdx, ok := columns[columnRelease]
	if !ok {
		return nil, fmt.Errorf("export is missing the %q column", columnRelease)
	}
	issueIdx, hasIssue := columns[columnIssue]
	publisherIdx, hasPublisher := columns[columnPublisher]

	var releases []pulllist.Release
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping unreadable export row",
				logging.Int("line", line), logging.Error(err))
			continue
		}

		comic := field(row, comicIdx)
		dateRaw := field(row, releaseIdx)
		if comic == "" || dateRaw == "" {
			logger.Debug("skipping export row with missing title or date",
				logging.Int("line", line))
			continue
		}

		date, err := parseExportDate(dateRaw)
		if err != nil {
			logger.Warn("skipping export row with unparseable release date",
				logging.Int("line", line),
				logging.String("comic", comic),
				logging.String("date", dateRaw),
			)
			continue
		}

		series, issue := splitIssue(comic)
		if hasIssue {
			if v := field(row, issueIdx); v != "" {
				issue = v
			}
		}

		release := pulllist.Release{
			SeriesTitle: normalizeTitle(series),
			IssueNumber: issue,
			ReleaseDate: date,
		}
		if hasPublisher {
			release.Publisher = field(row, publisherIdx)
		}
		releases = append(releases, release)
	}

	pulllist.Sort(releases)
	return releases, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseExportDate(raw string) (time.Time, error) {
	for _, layout := range exportDateFormats {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return pulllist.Day(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// splitIssue separates a trailing "#<issue>" designator from a combined comic
// title. "Saga #72" becomes ("Saga", "72"); a title without a marker keeps an
// empty issue number.
func splitIssue(comic string) (series, issue string) {
	idx := strings.LastIndex(comic, "#")
	if idx < 0 {
		return comic, ""
	}
	return strings.TrimSpace(comic[:idx]), strings.TrimSpace(comic[idx+1:])
}

// normalizeTitle collapses whitespace and applies title casing so the same
// series imported with different spacing or casing reconciles to one record.
func normalizeTitle(raw string) string {
	collapsed := textutil.CollapseWhitespace(raw)
	if collapsed == "" {
		return collapsed
	}
	return cases.Title(language.Und).String(collapsed)
}
