package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseArchiveTime(t *testing.T) {
	ts, err := ParseArchiveTime("20240110-150405", "")

	assert.Nil(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC), ts)
}

func TestParseArchiveTime_MinutePrecisionFallback(t *testing.T) {
	ts, err := ParseArchiveTime("20240110-1504", "")

	assert.Nil(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 15, 4, 0, 0, time.UTC), ts)
}

func TestParseArchiveTime_ExplicitLayout(t *testing.T) {
	ts, err := ParseArchiveTime("2024-01-10", "2006-01-02")

	assert.Nil(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), ts)
}

func TestParseArchiveTime_ExplicitLayoutDoesNotFallBack(t *testing.T) {
	_, err := ParseArchiveTime("20240110-150405", "2006-01-02")

	assert.NotNil(t, err)
	assert.IsType(t, &DateParseError{}, err)
}

func TestParseArchiveTime_Garbage(t *testing.T) {
	_, err := ParseArchiveTime("NOTADATE", "")

	assert.NotNil(t, err)
	assert.IsType(t, &DateParseError{}, err)
	assert.Contains(t, err.Error(), "NOTADATE")
}

func TestValidateDateFormat(t *testing.T) {
	for _, layout := range []string{"20060102-150405", "20060102-1504", "2006-01-02_15-04-05"} {
		assert.Nil(t, ValidateDateFormat(layout), layout)
	}
}

func TestValidateDateFormat_Invalid(t *testing.T) {
	// the month parses greedily over the literal zero, so the layout cannot
	// read back its own output
	err := ValidateDateFormat("10:04")

	assert.NotNil(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestMatchBackups(t *testing.T) {
	job := &Job{
		Name:   "docs",
		Target: "backup-$name-$date",
	}

	backups, err := MatchBackups([]string{
		"backup-docs-20240110-000000",
		"backup-docs-20240106-0000",
		"backup-images-20240110-000000",
		"unrelated-archive",
	}, job)

	assert.Nil(t, err)
	assert.Equal(t, map[string]time.Time{
		"backup-docs-20240110-000000": time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		"backup-docs-20240106-0000":   time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
	}, backups)
}

func TestMatchBackups_Aliases(t *testing.T) {
	job := &Job{
		Name:    "docs",
		Target:  "backup-$name-$date",
		Aliases: []string{"documents"},
	}

	backups, err := MatchBackups([]string{
		"backup-docs-20240110-000000",
		"backup-documents-20240106-000000",
	}, job)

	assert.Nil(t, err)
	assert.Len(t, backups, 2)
}

func TestMatchBackups_UnparseableDateFails(t *testing.T) {
	job := &Job{
		Name:   "docs",
		Target: "backup-$name-$date",
	}

	_, err := MatchBackups([]string{"backup-docs-NOTADATE"}, job)

	assert.NotNil(t, err)

	_, ok := errors.Cause(err).(*DateParseError)
	assert.True(t, ok)
}

func TestMatchBackups_ForeignArchivesNeverFail(t *testing.T) {
	job := &Job{
		Name:   "docs",
		Target: "backup-$name-$date",
	}

	backups, err := MatchBackups([]string{"backup-images-NOTADATE"}, job)

	assert.Nil(t, err)
	assert.Empty(t, backups)
}

func TestMatchBackups_ExplicitDateFormat(t *testing.T) {
	job := &Job{
		Name:       "docs",
		Target:     "backup-$name-$date",
		DateFormat: "2006-01-02",
	}

	backups, err := MatchBackups([]string{"backup-docs-2024-01-10"}, job)

	assert.Nil(t, err)
	assert.Equal(t, map[string]time.Time{
		"backup-docs-2024-01-10": time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}, backups)
}
