package sqlfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(JournalConfigProvider),
	fx.Provide(OpenJournalDatabase),
	fx.Provide(JournalRepository),
	fx.Invoke(CloseJournalDatabase),
)
