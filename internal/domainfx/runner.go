package domainfx

import (
	"context"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/yurykabanov/snapkeep/pkg/domain"
	"github.com/yurykabanov/snapkeep/pkg/http/handler"
	"github.com/yurykabanov/snapkeep/pkg/shell"
)

func NewCron() *cron.Cron {
	return cron.New()
}

func HookRunner(logger *logrus.Logger) domain.HookRunner {
	return shell.New(logger)
}

func BackupService(
	logger *logrus.Logger,
	store domain.ArchiveStore,
	journal domain.Journal,
	hooks domain.HookRunner,
	opts *domain.Options,
) (*domain.BackupService, handler.BackupLister) {
	service := domain.NewBackupService(logger, store, journal, hooks, opts.DryRun)

	return service, service
}

func Runner(
	logger *logrus.Logger,
	jobs []*domain.Job,
	service *domain.BackupService,
	journal domain.JournalReader,
	store domain.ArchiveStore,
	cron *cron.Cron,
	opts *domain.Options,
) (*domain.Runner, error) {
	return domain.NewRunner(logger, jobs, service, journal, store, cron, *opts)
}

// RunRunner executes the selected command in the background once the
// application is up and shuts the application down when it returns. The
// runner keeps the resulting error for main to turn into an exit code.
func RunRunner(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *logrus.Logger,
	runner *domain.Runner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.WithError(err).Error("Unable to shut down application")
					}
				}()

				_ = runner.Run()
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			runner.Stop()
			return nil
		},
	})
}
