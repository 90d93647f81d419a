package shell

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Runner executes job hook command lines through the system shell.
type Runner struct {
	logger logrus.FieldLogger
}

func New(logger logrus.FieldLogger) *Runner {
	return &Runner{logger: logger}
}

// Run executes one command line with "sh -c". On failure the tail of the
// command's combined output is folded into the returned error.
func (r *Runner) Run(ctx context.Context, command string) error {
	r.logger.WithField("command", command).Debug("Running shell command")

	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "command %q failed: %s", command, outputTail(out))
	}

	if len(out) > 0 {
		r.logger.WithField("command", command).Debug(strings.TrimSpace(string(out)))
	}

	return nil
}

// outputTail trims command output down to something that fits an error
// message.
func outputTail(out []byte) string {
	text := strings.TrimSpace(string(out))
	if len(text) > 512 {
		text = "..." + text[len(text)-512:]
	}

	return text
}
