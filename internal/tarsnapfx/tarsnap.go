package tarsnapfx

import (
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yurykabanov/snapkeep/pkg/domain"
	"github.com/yurykabanov/snapkeep/pkg/tarsnap"
)

const (
	ConfigToolBinary  = "tarsnap.binary"
	ConfigToolOptions = "tarsnap.options"

	DefaultToolBinary = "tarsnap"
)

type ToolConfig struct {
	Binary  string
	Options map[string]string
	DryRun  bool
}

// ToolConfigProvider merges the configured tool options with the repeatable
// "-o name=value" flags, flags winning on conflicts.
func ToolConfigProvider(v *viper.Viper, fs *pflag.FlagSet) (*ToolConfig, error) {
	binary := v.GetString(ConfigToolBinary)
	if binary == "" {
		binary = DefaultToolBinary
	}

	options := v.GetStringMapString(ConfigToolOptions)
	if options == nil {
		options = map[string]string{}
	}

	flagOptions, err := fs.GetStringArray("option")
	if err != nil {
		return nil, err
	}

	for _, option := range flagOptions {
		parts := strings.SplitN(option, "=", 2)
		if len(parts) == 2 {
			options[parts[0]] = parts[1]
		} else {
			options[parts[0]] = ""
		}
	}

	return &ToolConfig{
		Binary:  binary,
		Options: options,
		DryRun:  v.GetBool("dry-run"),
	}, nil
}

// ToolClient builds the tool client and verifies the binary can actually be
// found, the moral equivalent of pinging a remote daemon. The history command
// never runs the tool and works without it.
func ToolClient(config *ToolConfig, opts *domain.Options, logger *logrus.Logger) (*tarsnap.Client, error) {
	if opts.Command != domain.CommandHistory {
		if _, err := exec.LookPath(config.Binary); err != nil {
			return nil, errors.Wrapf(err, "unable to find backup tool %q", config.Binary)
		}
	}

	logger.WithField("binary", config.Binary).Debug("Using backup tool")

	return tarsnap.NewClient(logger, config.Binary, config.Options), nil
}

// ArchiveStore provides the cached archive view over the client.
func ArchiveStore(config *ToolConfig, client *tarsnap.Client, logger *logrus.Logger) (*tarsnap.Store, domain.ArchiveStore) {
	store := tarsnap.NewStore(logger, client, config.DryRun)

	return store, store
}
