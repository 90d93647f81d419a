package main

import (
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/yurykabanov/snapkeep/internal/configfx"
	"github.com/yurykabanov/snapkeep/internal/domainfx"
	"github.com/yurykabanov/snapkeep/internal/loggerfx"
	"github.com/yurykabanov/snapkeep/internal/metricsfx"
	"github.com/yurykabanov/snapkeep/internal/sqlfx"
	"github.com/yurykabanov/snapkeep/internal/tarsnapfx"
	"github.com/yurykabanov/snapkeep/pkg/domain"
)

func main() {
	logger := loggerfx.Logger()

	var runner *domain.Runner

	app := fx.New(
		fx.StartTimeout(15*time.Second),
		fx.StopTimeout(15*time.Second),

		fx.Logger(logger),

		loggerfx.Module,
		configfx.Module,
		sqlfx.Module,
		tarsnapfx.Module,
		metricsfx.Module,
		domainfx.Module,

		fx.Populate(&runner),
	)

	// bad flags, a broken config file or a missing tool binary end up here
	if err := app.Err(); err != nil {
		logger.Fatal(err)
	}

	app.Run()

	if runner.Err() != nil {
		os.Exit(1)
	}
}
