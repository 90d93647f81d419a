package tarsnap

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/snapkeep/pkg/domain"
)

// Option is one extra option passed to every tool invocation, rendered as
// "--name value" ("-n value" for single letter names). A valueless option
// renders as the bare switch.
type Option struct {
	Name  string
	Value string
}

// commandRunner runs the tool binary. It exists so tests can intercept the
// subprocess boundary.
type commandRunner interface {
	Run(ctx context.Context, name string, args []string) (stdout []byte, stderr []byte, err error)
}

type execCommandRunner struct{}

func (execCommandRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}

// Client drives the tarsnap binary. It holds no state besides the binary
// path and the fixed option set, every call is one subprocess.
type Client struct {
	logger logrus.FieldLogger

	binary  string
	options []Option

	runner commandRunner
}

func NewClient(logger logrus.FieldLogger, binary string, options map[string]string) *Client {
	opts := make([]Option, 0, len(options))
	for name, value := range options {
		opts = append(opts, Option{Name: name, Value: value})
	}

	// deterministic command lines regardless of map iteration order
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })

	return &Client{
		logger:  logger,
		binary:  binary,
		options: opts,
		runner:  execCommandRunner{},
	}
}

// call runs the tool with the configured options followed by the given
// arguments. A non-zero exit turns into an ExternalToolError carrying
// whatever the tool wrote to stderr.
func (c *Client) call(ctx context.Context, args ...string) ([]byte, error) {
	full := make([]string, 0, 2*len(c.options)+len(args))

	for _, opt := range c.options {
		prefix := "--"
		if len(opt.Name) == 1 {
			prefix = "-"
		}

		full = append(full, prefix+opt.Name)
		if opt.Value != "" {
			full = append(full, opt.Value)
		}
	}

	full = append(full, args...)

	c.logger.WithField("args", strings.Join(full, " ")).Debug("Executing backup tool")

	stdout, stderr, err := c.runner.Run(ctx, c.binary, full)
	if err != nil {
		return nil, &domain.ExternalToolError{Tool: c.binary, Stderr: string(stderr), Err: err}
	}

	return stdout, nil
}

// ListArchives returns the names of all archives in the backup store.
func (c *Client) ListArchives(ctx context.Context) ([]string, error) {
	out, err := c.call(ctx, "--list-archives")
	if err != nil {
		return nil, err
	}

	var archives []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			archives = append(archives, line)
		}
	}

	return archives, nil
}

// CreateArchive archives the sources under the given name.
func (c *Client) CreateArchive(ctx context.Context, name string, sources []string, excludes []string) error {
	args := []string{"-c", "-f", name}

	for _, exclude := range excludes {
		args = append(args, "--exclude", exclude)
	}
	args = append(args, sources...)

	_, err := c.call(ctx, args...)

	return err
}

// DeleteArchive removes the named archive.
func (c *Client) DeleteArchive(ctx context.Context, name string) error {
	_, err := c.call(ctx, "-d", "-f", name)

	return err
}
