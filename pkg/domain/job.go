package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// JobSpec is the raw shape of a single job in the configuration file, before
// global defaults are applied. Scalar fields are pointers so an absent key
// can be told apart from an empty value.
type JobSpec struct {
	Source     *string  `mapstructure:"source"`
	Sources    []string `mapstructure:"sources"`
	Alias      *string  `mapstructure:"alias"`
	Aliases    []string `mapstructure:"aliases"`
	Exclude    *string  `mapstructure:"exclude"`
	Excludes   []string `mapstructure:"excludes"`
	Delta      *string  `mapstructure:"delta"`
	Deltas     *string  `mapstructure:"deltas"`
	Target     *string  `mapstructure:"target"`
	DateFormat *string  `mapstructure:"dateformat"`
	Force      bool     `mapstructure:"force"`
	ExecBefore *string  `mapstructure:"exec_before"`
	ExecAfter  *string  `mapstructure:"exec_after"`
}

// Defaults are the global configuration values a job falls back to.
type Defaults struct {
	Target      string
	DateFormat  string
	Deltas      []Delta
	NamedDeltas map[string][]Delta
}

// Job is a fully resolved backup job.
type Job struct {
	Name       string
	Target     string
	DateFormat string // empty means the built-in formats
	Sources    []string
	Aliases    []string
	Excludes   []string
	Deltas     []Delta // empty means keep everything
	Force      bool
	ExecBefore string
	ExecAfter  string
}

// BuildJob resolves a job spec against the global defaults. It is pure data
// merging and validation, nothing touches the environment. Jobs without
// sources or without deltas are legal, they just support fewer commands.
func BuildJob(name string, spec JobSpec, defaults Defaults) (*Job, error) {
	sources, err := singularOrPlural(name, "source", spec.Source, spec.Sources)
	if err != nil {
		return nil, err
	}

	aliases, err := singularOrPlural(name, "alias", spec.Alias, spec.Aliases)
	if err != nil {
		return nil, err
	}

	excludes, err := singularOrPlural(name, "exclude", spec.Exclude, spec.Excludes)
	if err != nil {
		return nil, err
	}

	deltas, err := resolveDeltas(name, spec, defaults)
	if err != nil {
		return nil, err
	}

	target := defaults.Target
	if spec.Target != nil {
		target = *spec.Target
	}
	if target == "" {
		return nil, configErrorf("%s does not have a target name", jobLabel(name))
	}
	if !ParseTemplate(target).HasPlaceholder("date") {
		return nil, configErrorf("%s: target %q must make use of the $date placeholder", jobLabel(name), target)
	}

	dateFormat := defaults.DateFormat
	if spec.DateFormat != nil {
		dateFormat = *spec.DateFormat
	}
	if dateFormat != "" {
		if err := ValidateDateFormat(dateFormat); err != nil {
			return nil, errors.Wrap(err, jobLabel(name))
		}
	}

	return &Job{
		Name:       name,
		Target:     target,
		DateFormat: dateFormat,
		Sources:    sources,
		Aliases:    aliases,
		Excludes:   excludes,
		Deltas:     deltas,
		Force:      spec.Force,
		ExecBefore: stringValue(spec.ExecBefore),
		ExecAfter:  stringValue(spec.ExecAfter),
	}, nil
}

func resolveDeltas(name string, spec JobSpec, defaults Defaults) ([]Delta, error) {
	switch {
	case spec.Delta != nil && spec.Deltas != nil:
		return nil, configErrorf("%s: use either the %q or the %q option, not both", jobLabel(name), "delta", "deltas")

	case spec.Delta != nil:
		deltas, ok := defaults.NamedDeltas[*spec.Delta]
		if !ok {
			return nil, configErrorf("%s: no delta scheme named %q is defined", jobLabel(name), *spec.Delta)
		}
		return deltas, nil

	case spec.Deltas != nil:
		deltas, err := ParseDeltas(*spec.Deltas)
		if err != nil {
			return nil, errors.Wrap(err, jobLabel(name))
		}
		return deltas, nil

	default:
		return defaults.Deltas, nil
	}
}

func singularOrPlural(job, key string, singular *string, plural []string) ([]string, error) {
	if singular != nil && len(plural) > 0 {
		return nil, configErrorf("%s: use either the %q or the %q option, not both", jobLabel(job), key, key+"s")
	}

	if singular != nil {
		return []string{*singular}, nil
	}

	return plural, nil
}

func jobLabel(name string) string {
	if name == "" {
		return "job"
	}

	return fmt.Sprintf("job %q", name)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// Matcher compiles the matcher that recognizes this job's archives, by job
// name or by any of its aliases.
func (j *Job) Matcher() (*Matcher, error) {
	names := make([]string, 0, len(j.Aliases)+1)
	if j.Name != "" {
		names = append(names, j.Name)
	}
	names = append(names, j.Aliases...)

	return NewMatcher(ParseTemplate(j.Target), names)
}

// RenderTarget renders the archive name for a backup taken at the given time.
func (j *Job) RenderTarget(now time.Time) string {
	layout := j.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}

	return ParseTemplate(j.Target).Render(map[string]string{
		"name": j.Name,
		"date": now.UTC().Format(layout),
	})
}
