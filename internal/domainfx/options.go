package domainfx

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yurykabanov/snapkeep/pkg/domain"
)

const (
	ConfigDaemonSchedule = "daemon.schedule"
	ConfigHistoryLimit   = "journal.history_limit"
)

// RunOptions turns the parsed command line into the runner's options and
// enforces the rules that keep config file mode and single job mode apart.
func RunOptions(v *viper.Viper, fs *pflag.FlagSet) (*domain.Options, error) {
	args := fs.Args()
	if len(args) == 0 {
		return nil, &domain.ArgumentError{Reason: fmt.Sprintf("no command given, expected one of: %s", strings.Join(domain.Commands, ", "))}
	}

	command := args[0]
	if !domain.ValidCommand(command) {
		return nil, &domain.ArgumentError{Reason: fmt.Sprintf("unknown command %q, expected one of: %s", command, strings.Join(domain.Commands, ", "))}
	}

	// config keys are case insensitive, so job selection is too
	jobs := make([]string, 0, len(args[1:]))
	for _, name := range args[1:] {
		jobs = append(jobs, strings.ToLower(name))
	}

	configured := v.ConfigFileUsed() != ""

	var usedJobFlags []string
	for _, name := range []string{"target", "sources", "deltas", "dateformat"} {
		if fs.Changed(name) {
			usedJobFlags = append(usedJobFlags, "--"+name)
		}
	}

	if configured && len(usedJobFlags) > 0 {
		return nil, &domain.ArgumentError{Reason: fmt.Sprintf("%s cannot be combined with a config file", strings.Join(usedJobFlags, ", "))}
	}

	if !configured {
		if len(jobs) > 0 {
			return nil, &domain.ArgumentError{Reason: "job arguments require a config file"}
		}

		if err := validateSingleJobFlags(command, fs, v); err != nil {
			return nil, err
		}
	}

	return &domain.Options{
		Command:      command,
		Jobs:         jobs,
		DryRun:       v.GetBool("dry-run"),
		NoExpire:     v.GetBool("no-expire"),
		Schedule:     v.GetString(ConfigDaemonSchedule),
		HistoryLimit: historyLimit(v),
	}, nil
}

func validateSingleJobFlags(command string, fs *pflag.FlagSet, v *viper.Viper) error {
	target := fs.Changed("target")
	sources := fs.Changed("sources")
	deltas := fs.Changed("deltas")

	switch command {
	case domain.CommandMake:
		if !target || !sources {
			return &domain.ArgumentError{Reason: "make without a config file requires --target and --sources"}
		}
		if !deltas && !v.GetBool("no-expire") {
			return &domain.ArgumentError{Reason: "make without a config file requires --deltas unless --no-expire is given"}
		}

	case domain.CommandExpire:
		if !target || !deltas {
			return &domain.ArgumentError{Reason: "expire without a config file requires --target and --deltas"}
		}

	case domain.CommandList:
		if !target {
			return &domain.ArgumentError{Reason: "list without a config file requires --target"}
		}

	case domain.CommandHistory:
		// reads the journal only, no job needed

	case domain.CommandDaemon:
		return &domain.ArgumentError{Reason: "daemon requires a config file"}
	}

	return nil
}

func historyLimit(v *viper.Viper) int {
	if limit := v.GetInt(ConfigHistoryLimit); limit > 0 {
		return limit
	}

	return 50
}
