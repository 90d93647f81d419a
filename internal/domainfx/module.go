package domainfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(RunOptions),
	fx.Provide(LoadJobs),
	fx.Provide(NewCron),
	fx.Provide(HookRunner),
	fx.Provide(BackupService),
	fx.Provide(Runner),
	fx.Invoke(RunRunner),
)
