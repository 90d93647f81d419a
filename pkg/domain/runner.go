package domain

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/yurykabanov/snapkeep/pkg/appcontext"
)

const (
	CommandMake    = "make"
	CommandExpire  = "expire"
	CommandList    = "list"
	CommandHistory = "history"
	CommandDaemon  = "daemon"
)

// Commands lists every command the runner understands, in display order.
var Commands = []string{CommandMake, CommandExpire, CommandList, CommandHistory, CommandDaemon}

func ValidCommand(command string) bool {
	for _, known := range Commands {
		if command == known {
			return true
		}
	}

	return false
}

// Options carry the run mode decided on the command line.
type Options struct {
	Command      string
	Jobs         []string
	DryRun       bool
	NoExpire     bool
	Schedule     string
	HistoryLimit int
}

// backupService is the slice of BackupService the runner needs.
type backupService interface {
	List(ctx context.Context, job *Job) ([]Backup, error)
	Make(ctx context.Context, job *Job) (string, bool, error)
	Expire(ctx context.Context, job *Job) ([]string, error)
}

type cronRunner interface {
	AddFunc(spec string, cmd func()) error
	Start()
	Stop()
}

var errJobsFailed = errors.New("one or more jobs failed")

// Runner executes one command over the selected jobs. It is the piece main
// hands control to, everything below it is per job.
type Runner struct {
	logger logrus.FieldLogger

	jobs  map[string]*Job
	order []string

	service backupService
	journal JournalReader
	store   ArchiveStore

	cron cronRunner
	opts Options

	out io.Writer

	running *atomic.Bool

	mu  sync.Mutex
	err error

	stopOnce sync.Once
	done     chan struct{}
}

func NewRunner(
	logger logrus.FieldLogger,
	jobs []*Job,
	service backupService,
	journal JournalReader,
	store ArchiveStore,
	cron cronRunner,
	opts Options,
) (*Runner, error) {
	jobsMap := make(map[string]*Job, len(jobs))
	order := make([]string, 0, len(jobs))

	for _, job := range jobs {
		jobsMap[job.Name] = job
		order = append(order, job.Name)
	}

	// an explicit selection replaces the configured order
	if len(opts.Jobs) > 0 {
		for _, name := range opts.Jobs {
			if _, ok := jobsMap[name]; !ok {
				return nil, &ArgumentError{Reason: fmt.Sprintf("job %q is not defined in the config file", name)}
			}
		}
		order = opts.Jobs
	}

	if opts.Command == CommandDaemon && opts.Schedule == "" {
		return nil, &ConfigError{Reason: "daemon.schedule must be set to run the daemon"}
	}

	return &Runner{
		logger: logger,

		jobs:  jobsMap,
		order: order,

		service: service,
		journal: journal,
		store:   store,

		cron: cron,
		opts: opts,

		out: os.Stdout,

		running: atomic.NewBool(false),

		done: make(chan struct{}),
	}, nil
}

// Run executes the selected command. The error it returns decides the
// process exit code; it stays available through Err afterwards.
func (r *Runner) Run() error {
	ctx := appcontext.WithCommand(context.Background(), r.opts.Command)

	var err error

	switch r.opts.Command {
	case CommandMake:
		err = r.eachJob(ctx, r.makeJob)
	case CommandExpire:
		err = r.eachJob(ctx, r.expireJob)
	case CommandList:
		err = r.eachJob(ctx, r.listJob)
	case CommandHistory:
		err = r.history(ctx)
	case CommandDaemon:
		err = r.daemon(ctx)
	default:
		err = &ArgumentError{Reason: fmt.Sprintf("unknown command %q", r.opts.Command)}
	}

	if err != nil {
		appcontext.LoggerFromContext(r.logger, ctx).WithError(err).Error("Command finished with error")
	}

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()

	return err
}

// Err returns the error a finished run left behind.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Stop ends a running daemon. It is safe to call on any runner, any number
// of times.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// eachJob applies fn to every selected job in order. A date parse failure
// fails that job only and the remaining jobs still run; any other error,
// notably a failing tool invocation, aborts the whole run.
func (r *Runner) eachJob(ctx context.Context, fn func(context.Context, *Job) error) error {
	failed := false

	for _, name := range r.order {
		jobCtx := appcontext.WithJobName(ctx, name)

		if err := fn(jobCtx, r.jobs[name]); err != nil {
			if _, ok := errors.Cause(err).(*DateParseError); ok {
				appcontext.LoggerFromContext(r.logger, jobCtx).WithError(err).Error("Job failed, continuing with the next one")
				failed = true
				continue
			}

			return err
		}
	}

	if failed {
		return errJobsFailed
	}

	return nil
}

func (r *Runner) makeJob(ctx context.Context, job *Job) error {
	_, skipped, err := r.service.Make(ctx, job)
	if err != nil {
		return err
	}

	if skipped || r.opts.NoExpire {
		return nil
	}

	_, err = r.service.Expire(ctx, job)

	return err
}

func (r *Runner) expireJob(ctx context.Context, job *Job) error {
	_, err := r.service.Expire(ctx, job)

	return err
}

func (r *Runner) listJob(ctx context.Context, job *Job) error {
	backups, err := r.service.List(ctx, job)
	if err != nil {
		return err
	}

	if job.Name != "" {
		fmt.Fprintf(r.out, "%s:\n", job.Name)
	}

	for _, backup := range backups {
		fmt.Fprintf(r.out, "  %s\n", backup.Name)
	}

	return nil
}

func (r *Runner) history(ctx context.Context) error {
	limit := r.opts.HistoryLimit
	if limit <= 0 {
		limit = 50
	}

	entries, err := r.journal.Recent(ctx, r.opts.Jobs, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		appcontext.LoggerFromContext(r.logger, ctx).Info("Journal has no matching entries")
		return nil
	}

	for _, entry := range entries {
		job := entry.Job
		if job == "" {
			job = "-"
		}

		suffix := ""
		if entry.DryRun {
			suffix = " (dry run)"
		}

		fmt.Fprintf(r.out, "%s  %-8s %-16s %s%s\n",
			entry.CreatedAt.UTC().Format("2006-01-02 15:04:05"), entry.Action, job, entry.Archive, suffix)
	}

	return nil
}

func (r *Runner) daemon(ctx context.Context) error {
	logger := appcontext.LoggerFromContext(r.logger, ctx)

	err := r.cron.AddFunc(r.opts.Schedule, func() { r.scheduledRun() })
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("invalid daemon schedule %q: %s", r.opts.Schedule, err)}
	}

	logger.WithField("schedule", r.opts.Schedule).Info("Starting scheduler")
	r.cron.Start()

	<-r.done

	logger.Debug("Stopping scheduler")
	r.cron.Stop()

	return nil
}

// scheduledRun performs one make pass (with expiry) over every selected job.
// A tick that fires while the previous run is still going is skipped rather
// than queued. Every run starts from a fresh archive listing.
func (r *Runner) scheduledRun() {
	if !r.running.CAS(false, true) {
		r.logger.Warn("Previous scheduled run is still active, skipping this tick")
		return
	}
	defer r.running.Store(false)

	ctx := appcontext.WithCommand(context.Background(), CommandMake)
	logger := appcontext.LoggerFromContext(r.logger, ctx)

	logger.Info("Starting scheduled run")

	if err := r.store.Refresh(ctx); err != nil {
		logger.WithError(err).Error("Unable to refresh the archive list, skipping this run")
		return
	}

	if err := r.eachJob(ctx, r.makeJob); err != nil {
		logger.WithError(err).Error("Scheduled run finished with error")
		return
	}

	logger.Info("Scheduled run finished")
}
