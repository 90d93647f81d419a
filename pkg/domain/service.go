package domain

import (
	"context"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/snapkeep/pkg/appcontext"
)

// ArchiveStore is the cached view of the archives in the backup store.
// Create and Delete keep the cache coherent with the mutations they perform,
// Refresh discards the cache so the next read hits the tool again.
type ArchiveStore interface {
	Archives(ctx context.Context) ([]string, error)
	Refresh(ctx context.Context) error
	Create(ctx context.Context, name string, sources []string, excludes []string) error
	Delete(ctx context.Context, name string) error
}

// HookRunner executes a job's exec_before and exec_after command lines.
type HookRunner interface {
	Run(ctx context.Context, command string) error
}

// BackupService implements the per-job operations behind the make, expire
// and list commands.
type BackupService struct {
	logger logrus.FieldLogger

	store   ArchiveStore
	journal Journal
	hooks   HookRunner

	dryRun bool

	now func() time.Time
}

func NewBackupService(
	logger logrus.FieldLogger,
	store ArchiveStore,
	journal Journal,
	hooks HookRunner,
	dryRun bool,
) *BackupService {
	return &BackupService{
		logger:  logger,
		store:   store,
		journal: journal,
		hooks:   hooks,
		dryRun:  dryRun,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Backups returns the job's backups known to the archive store, keyed by
// archive name.
func (s *BackupService) Backups(ctx context.Context, job *Job) (map[string]time.Time, error) {
	archives, err := s.store.Archives(ctx)
	if err != nil {
		return nil, err
	}

	return MatchBackups(archives, job)
}

// List returns the job's backups, newest first.
func (s *BackupService) List(ctx context.Context, job *Job) ([]Backup, error) {
	backups, err := s.Backups(ctx, job)
	if err != nil {
		return nil, err
	}

	return SortedBackups(backups), nil
}

// Make creates a new archive for the job. It reports the archive name and
// whether the job was skipped because it has no usable sources.
func (s *BackupService) Make(ctx context.Context, job *Job) (string, bool, error) {
	logger := appcontext.LoggerFromContext(s.logger, ctx)

	if len(job.Sources) == 0 {
		logger.Info("Job has no sources, nothing to back up")
		return "", true, nil
	}

	if missing := missingSources(job.Sources); len(missing) > 0 {
		if !job.Force {
			logger.WithField("sources", missing).Info("Sources are missing or empty, skipping job")
			return "", true, nil
		}

		logger.WithField("sources", missing).Warn("Sources are missing or empty, proceeding because of force")
	}

	name := job.RenderTarget(s.now())

	ctx = appcontext.WithArchiveName(ctx, name)
	logger = appcontext.LoggerFromContext(s.logger, ctx)

	if err := s.runHook(ctx, "exec_before", job.ExecBefore); err != nil {
		return "", false, err
	}

	logger.Info("Creating archive")

	if err := s.store.Create(ctx, name, job.Sources, job.Excludes); err != nil {
		return "", false, err
	}

	s.record(ctx, job, name, ActionCreated)

	if err := s.runHook(ctx, "exec_after", job.ExecAfter); err != nil {
		return name, false, err
	}

	return name, false, nil
}

// Expire deletes the job's backups that fall outside its retention scheme,
// oldest first. On failure the archives already deleted stay deleted. The
// deleted names are returned.
func (s *BackupService) Expire(ctx context.Context, job *Job) ([]string, error) {
	logger := appcontext.LoggerFromContext(s.logger, ctx)

	if len(job.Deltas) == 0 {
		logger.Debug("Job has no deltas, nothing can expire")
		return nil, nil
	}

	backups, err := s.Backups(ctx, job)
	if err != nil {
		return nil, err
	}

	keep := ComputeKeepSet(backups, job.Deltas, s.now())

	sorted := SortedBackups(backups)

	removable := make([]string, 0, len(sorted)-len(keep))
	for i := len(sorted) - 1; i >= 0; i-- {
		if _, ok := keep[sorted[i].Name]; !ok {
			removable = append(removable, sorted[i].Name)
		}
	}

	logger.WithFields(logrus.Fields{
		"backups": len(sorted),
		"keep":    len(keep),
		"expired": len(removable),
	}).Info("Expiring backups")

	deleted := make([]string, 0, len(removable))
	for _, name := range removable {
		logger.WithField("archive", name).Info("Deleting archive")

		if err := s.store.Delete(ctx, name); err != nil {
			return deleted, err
		}

		deleted = append(deleted, name)
		s.record(ctx, job, name, ActionDeleted)
	}

	return deleted, nil
}

func (s *BackupService) runHook(ctx context.Context, kind, command string) error {
	if command == "" {
		return nil
	}

	logger := appcontext.LoggerFromContext(s.logger, ctx).WithField("hook", kind)

	if s.dryRun {
		logger.Debug("Dry run, skipping hook")
		return nil
	}

	logger.Debug("Running hook")

	if err := s.hooks.Run(ctx, command); err != nil {
		return errors.Wrapf(err, "%s hook failed", kind)
	}

	return nil
}

// record journals an archive action. Journal failures are logged and
// swallowed, they must never fail the backup run itself.
func (s *BackupService) record(ctx context.Context, job *Job, archive, action string) {
	entry := JournalEntry{
		Job:       job.Name,
		Archive:   archive,
		Action:    action,
		DryRun:    s.dryRun,
		CreatedAt: s.now(),
	}

	if err := s.journal.Record(ctx, entry); err != nil {
		logger := appcontext.LoggerFromContext(s.logger, ctx)
		logger.WithError(err).Warn("BackupService::record is unable to journal the action")
	}
}

// missingSources returns the sources that do not exist, plus directories
// that exist but contain nothing worth archiving.
func missingSources(sources []string) []string {
	var missing []string

	for _, source := range sources {
		fi, err := os.Stat(source)
		if err != nil {
			missing = append(missing, source)
			continue
		}

		if !fi.IsDir() {
			continue
		}

		if entries, err := ioutil.ReadDir(source); err != nil || len(entries) == 0 {
			missing = append(missing, source)
		}
	}

	return missing
}
