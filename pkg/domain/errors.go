package domain

import (
	"fmt"
	"strings"
)

// ConfigError indicates invalid or contradictory configuration. It aborts
// the process before any job is touched.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ArgumentError indicates an invalid command line: unknown commands,
// flag combinations that contradict each other, selection of undefined jobs.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// DateParseError is returned when an archive name matched a job's target
// template but the captured date portion cannot be parsed. It fails the
// affected job only, the run continues with the next one.
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%q is not a supported date format", e.Text)
}

// ExternalToolError is returned when the backup tool subprocess exits with
// failure. Stderr carries the tool's own diagnostics. It aborts the whole
// run: archives already deleted stay deleted.
type ExternalToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	return fmt.Sprintf("%s failed: %s", e.Tool, msg)
}
