package domain

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func stringPtr(s string) *string {
	return &s
}

func TestBuildJob(t *testing.T) {
	spec := JobSpec{
		Sources:    []string{"/var/www", "/etc"},
		Excludes:   []string{"/var/www/tmp"},
		Deltas:     stringPtr("1h 1d 7d"),
		Target:     stringPtr("www-$date"),
		DateFormat: stringPtr("2006-01-02"),
		ExecBefore: stringPtr("mysqldump > /var/www/dump.sql"),
		ExecAfter:  stringPtr("rm /var/www/dump.sql"),
	}

	job, err := BuildJob("www", spec, Defaults{})

	assert.Nil(t, err)
	assert.Equal(t, "www", job.Name)
	assert.Equal(t, "www-$date", job.Target)
	assert.Equal(t, "2006-01-02", job.DateFormat)
	assert.Equal(t, []string{"/var/www", "/etc"}, job.Sources)
	assert.Equal(t, []string{"/var/www/tmp"}, job.Excludes)
	assert.Len(t, job.Deltas, 3)
	assert.Equal(t, "mysqldump > /var/www/dump.sql", job.ExecBefore)
	assert.Equal(t, "rm /var/www/dump.sql", job.ExecAfter)
	assert.False(t, job.Force)
}

func TestBuildJob_AppliesDefaults(t *testing.T) {
	defaults := Defaults{
		Target:     "backup-$name-$date",
		DateFormat: "2006-01-02",
		Deltas: []Delta{
			{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
			{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
		},
	}

	job, err := BuildJob("docs", JobSpec{Source: stringPtr("/srv/docs")}, defaults)

	assert.Nil(t, err)
	assert.Equal(t, "backup-$name-$date", job.Target)
	assert.Equal(t, "2006-01-02", job.DateFormat)
	assert.Equal(t, defaults.Deltas, job.Deltas)
	assert.Equal(t, []string{"/srv/docs"}, job.Sources)
}

func TestBuildJob_SpecOverridesDefaults(t *testing.T) {
	defaults := Defaults{
		Target:     "backup-$name-$date",
		DateFormat: "2006-01-02",
	}

	job, err := BuildJob("docs", JobSpec{
		Target:     stringPtr("docs-$date"),
		DateFormat: stringPtr("20060102"),
	}, defaults)

	assert.Nil(t, err)
	assert.Equal(t, "docs-$date", job.Target)
	assert.Equal(t, "20060102", job.DateFormat)
}

func TestBuildJob_SingularAndPluralAreExclusive(t *testing.T) {
	cases := []JobSpec{
		{Source: stringPtr("/a"), Sources: []string{"/b"}, Target: stringPtr("x-$date")},
		{Alias: stringPtr("a"), Aliases: []string{"b"}, Target: stringPtr("x-$date")},
		{Exclude: stringPtr("/a"), Excludes: []string{"/b"}, Target: stringPtr("x-$date")},
	}

	for _, spec := range cases {
		_, err := BuildJob("docs", spec, Defaults{})

		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), `job "docs"`)
		assert.Contains(t, err.Error(), "use either")
	}
}

func TestBuildJob_DeltaAndDeltasAreExclusive(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{
		Delta:  stringPtr("important"),
		Deltas: stringPtr("1d 7d"),
		Target: stringPtr("x-$date"),
	}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "use either")
}

func TestBuildJob_NamedDeltaScheme(t *testing.T) {
	defaults := Defaults{
		NamedDeltas: map[string][]Delta{
			"important": {
				{Window: time.Hour, Resolution: time.Hour},
				{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
			},
		},
	}

	job, err := BuildJob("docs", JobSpec{
		Delta:  stringPtr("important"),
		Target: stringPtr("x-$date"),
	}, defaults)

	assert.Nil(t, err)
	assert.Equal(t, defaults.NamedDeltas["important"], job.Deltas)
}

func TestBuildJob_UnknownNamedDeltaScheme(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{
		Delta:  stringPtr("important"),
		Target: stringPtr("x-$date"),
	}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), `no delta scheme named "important"`)
}

func TestBuildJob_RequiresTarget(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), `job "docs" does not have a target name`)

	_, err = BuildJob("", JobSpec{}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "job does not have a target name")
}

func TestBuildJob_TargetRequiresDatePlaceholder(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{Target: stringPtr("docs-backup")}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "$date")
}

func TestBuildJob_BadDateFormat(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{
		Target:     stringPtr("x-$date"),
		DateFormat: stringPtr("10:04"),
	}, Defaults{})

	assert.NotNil(t, err)

	_, ok := errors.Cause(err).(*ConfigError)
	assert.True(t, ok)
}

func TestBuildJob_BadDeltas(t *testing.T) {
	_, err := BuildJob("docs", JobSpec{
		Target: stringPtr("x-$date"),
		Deltas: stringPtr("1x 2y"),
	}, Defaults{})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), `job "docs"`)
	assert.Contains(t, err.Error(), "not a valid duration")
}

func TestJob_RenderTarget(t *testing.T) {
	job := &Job{
		Name:   "docs",
		Target: "backup-$name-$date",
	}

	name := job.RenderTarget(time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, "backup-docs-20240110-150405", name)
}

func TestJob_RenderTargetCustomFormat(t *testing.T) {
	job := &Job{
		Name:       "docs",
		Target:     "backup-$name-$date",
		DateFormat: "2006-01-02",
	}

	name := job.RenderTarget(time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, "backup-docs-2024-01-10", name)
}

func TestJob_RenderTargetUsesUTC(t *testing.T) {
	job := &Job{
		Name:   "docs",
		Target: "backup-$name-$date",
	}

	offset := time.FixedZone("UTC+3", 3*60*60)
	name := job.RenderTarget(time.Date(2024, 1, 10, 3, 0, 0, 0, offset))

	assert.Equal(t, "backup-docs-20240110-000000", name)
}

func TestJob_MatcherUsesAliases(t *testing.T) {
	job := &Job{
		Name:    "docs",
		Target:  "backup-$name-$date",
		Aliases: []string{"documents"},
	}

	matcher, err := job.Matcher()

	assert.Nil(t, err)

	_, ok := matcher.Extract("backup-documents-20240110-000000")
	assert.True(t, ok)

	_, ok = matcher.Extract("backup-docs-20240110-000000")
	assert.True(t, ok)
}
