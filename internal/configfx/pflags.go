package configfx

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func PFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	// Config file flag
	fs.StringP("config", "c", "", "Config file")

	// Single job mode flags
	fs.String("target", "", "Target archive name template, must contain $date")
	fs.StringSlice("sources", nil, "Paths to back up")
	fs.StringP("deltas", "d", "", `Whitespace separated tier list, e.g. "1h 1d 7d"`)
	fs.StringP("dateformat", "f", "", "Date format used in archive names")

	// Behavior flags
	fs.StringArrayP("option", "o", nil, "Extra tool option as name=value, may be repeated")
	fs.BoolP("dry-run", "n", false, "Only simulate, make no changes to any archive")
	fs.Bool("no-expire", false, "Do not expire after making backups")
	fs.BoolP("verbose", "v", false, "Verbose logging")
	fs.BoolP("quiet", "q", false, "Errors and warnings only")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [job ...]\n\nCommands: make, expire, list, history, daemon\n\nFlags:\n%s",
			os.Args[0], fs.FlagUsages())
	}

	// ExitOnError: a bad flag prints usage and exits right here
	_ = fs.Parse(os.Args[1:])

	return fs
}
