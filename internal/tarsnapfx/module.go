package tarsnapfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ToolConfigProvider),
	fx.Provide(ToolClient),
	fx.Provide(ArchiveStore),
)
