package domain

import "time"

// DateFormats are tried in order when recovering a backup's time from its
// archive name and no explicit format is configured.
var DateFormats = []string{
	"20060102-150405",
	"20060102-1504",
}

// DefaultDateFormat renders timestamps into the names of new archives.
const DefaultDateFormat = "20060102-150405"

// ParseArchiveTime parses the date portion of an archive name as UTC. With
// an explicit layout only that layout is tried, otherwise the built-in
// formats are attempted in order.
func ParseArchiveTime(text string, layout string) (time.Time, error) {
	layouts := DateFormats
	if layout != "" {
		layouts = []string{layout}
	}

	for _, l := range layouts {
		if ts, err := time.ParseInLocation(l, text, time.UTC); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, &DateParseError{Text: text}
}

// ValidateDateFormat rejects layouts that cannot parse their own rendering
// of a timestamp.
func ValidateDateFormat(layout string) error {
	ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)
	if _, err := time.ParseInLocation(layout, ref.Format(layout), time.UTC); err != nil {
		return configErrorf("not a valid date format: %q", layout)
	}

	return nil
}

// MatchBackups filters an archive listing down to the backups that belong to
// the job and recovers each backup's creation time from its name. Archives
// that do not match the job's target template are ignored, a matching
// archive with an unparseable date fails with a DateParseError.
func MatchBackups(archives []string, job *Job) (map[string]time.Time, error) {
	matcher, err := job.Matcher()
	if err != nil {
		return nil, err
	}

	backups := make(map[string]time.Time, len(archives))
	for _, archive := range archives {
		text, ok := matcher.Extract(archive)
		if !ok {
			continue
		}

		ts, err := ParseArchiveTime(text, job.DateFormat)
		if err != nil {
			return nil, err
		}

		backups[archive] = ts
	}

	return backups, nil
}
