package domainfx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yurykabanov/snapkeep/pkg/domain"
)

const (
	ConfigGlobalDeltas     = "deltas"
	ConfigGlobalDeltaNames = "delta-names"
	ConfigGlobalTarget     = "target"
	ConfigGlobalDateFormat = "dateformat"

	ConfigJobs = "jobs"
)

// LoadJobs resolves the jobs to operate on: from the config file when one is
// in use, from the single job flags otherwise.
func LoadJobs(v *viper.Viper, fs *pflag.FlagSet, opts *domain.Options) ([]*domain.Job, error) {
	if v.ConfigFileUsed() != "" {
		return loadConfigJobs(v)
	}

	return loadFlagJob(v, fs, opts)
}

func loadConfigJobs(v *viper.Viper) ([]*domain.Job, error) {
	defaults, err := loadDefaults(v)
	if err != nil {
		return nil, err
	}

	raw := v.GetStringMap(ConfigJobs)
	if len(raw) == 0 {
		return nil, &domain.ConfigError{Reason: "config must define at least one job"}
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]*domain.Job, 0, len(names))
	for _, name := range names {
		spec, err := decodeJobSpec(name, raw[name])
		if err != nil {
			return nil, err
		}

		// the config layer is case insensitive, scheme references follow suit
		if spec.Delta != nil {
			lower := strings.ToLower(*spec.Delta)
			spec.Delta = &lower
		}

		job, err := domain.BuildJob(name, *spec, *defaults)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// loadDefaults reads the top level config values jobs inherit from.
func loadDefaults(v *viper.Viper) (*domain.Defaults, error) {
	defaults := &domain.Defaults{}

	if spec := v.GetString(ConfigGlobalDeltas); spec != "" {
		deltas, err := domain.ParseDeltas(spec)
		if err != nil {
			return nil, err
		}
		defaults.Deltas = deltas
	}

	defaults.Target = v.GetString(ConfigGlobalTarget)
	if defaults.Target != "" {
		tmpl := domain.ParseTemplate(defaults.Target)
		if !tmpl.HasPlaceholder("name") || !tmpl.HasPlaceholder("date") {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("global target %q must use both the $name and $date placeholders", defaults.Target)}
		}
	}

	defaults.DateFormat = v.GetString(ConfigGlobalDateFormat)
	if defaults.DateFormat != "" {
		if err := domain.ValidateDateFormat(defaults.DateFormat); err != nil {
			return nil, err
		}
	}

	named, err := namedDeltas(v)
	if err != nil {
		return nil, err
	}
	defaults.NamedDeltas = named

	return defaults, nil
}

func namedDeltas(v *viper.Viper) (map[string][]domain.Delta, error) {
	raw := v.GetStringMap(ConfigGlobalDeltaNames)
	if len(raw) == 0 {
		return nil, nil
	}

	values := make(map[string]*string, len(raw))
	for name, value := range raw {
		if value == nil {
			values[name] = nil
			continue
		}

		text, ok := value.(string)
		if !ok {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("delta name %q: expected a list of deltas", name)}
		}
		values[name] = &text
	}

	return domain.ParseNamedDeltas(values)
}

// decodeJobSpec decodes one raw job entry strictly, so that a misspelled key
// is reported instead of silently ignored.
func decodeJobSpec(name string, raw interface{}) (*domain.JobSpec, error) {
	var spec domain.JobSpec
	var metadata mapstructure.Metadata

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &spec,
		Metadata: &metadata,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("job %q: %s", name, err)}
	}

	if len(metadata.Unused) > 0 {
		sort.Strings(metadata.Unused)
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("job %q has unsupported configuration values: %s", name, strings.Join(metadata.Unused, ", "))}
	}

	return &spec, nil
}

// loadFlagJob builds the single anonymous job the job flags describe. The
// history command reads the journal only and needs no job at all.
func loadFlagJob(v *viper.Viper, fs *pflag.FlagSet, opts *domain.Options) ([]*domain.Job, error) {
	if opts.Command == domain.CommandHistory {
		return nil, nil
	}

	spec := domain.JobSpec{
		Sources: v.GetStringSlice("sources"),
	}

	if fs.Changed("target") {
		target := v.GetString("target")
		spec.Target = &target
	}
	if fs.Changed("deltas") {
		deltas := v.GetString("deltas")
		spec.Deltas = &deltas
	}
	if fs.Changed("dateformat") {
		dateFormat := v.GetString("dateformat")
		spec.DateFormat = &dateFormat
	}

	job, err := domain.BuildJob("", spec, domain.Defaults{})
	if err != nil {
		return nil, err
	}

	return []*domain.Job{job}, nil
}
