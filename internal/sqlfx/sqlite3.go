package sqlfx

import (
	"context"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/snapkeep/pkg/domain"
	"github.com/yurykabanov/snapkeep/pkg/util"
)

const (
	ConfigJournalEnabled    = "journal.enabled"
	ConfigJournalDSN        = "journal.dsn"
	ConfigJournalMigrations = "journal.migrations"
)

type JournalConfig struct {
	Enabled        bool
	DSN            string
	DatabaseName   string
	MigrationsPath string
}

func JournalConfigProvider(v *viper.Viper) (*JournalConfig, error) {
	config := &JournalConfig{
		Enabled:        true,
		DSN:            "./snapkeep.db",
		DatabaseName:   "snapkeep",
		MigrationsPath: "file://migrations/",
	}

	if v.IsSet(ConfigJournalEnabled) {
		config.Enabled = v.GetBool(ConfigJournalEnabled)
	}
	if dsn := v.GetString(ConfigJournalDSN); dsn != "" {
		config.DSN = dsn
	}
	if path := v.GetString(ConfigJournalMigrations); path != "" {
		config.MigrationsPath = path
	}

	return config, nil
}

// OpenJournalDatabase opens and migrates the journal. With the journal
// disabled it yields no database at all and the repository provider falls
// back to the no-op implementation. The list command neither records nor
// reads anything, it gets no database either.
func OpenJournalDatabase(config *JournalConfig, opts *domain.Options, logger *logrus.Logger) (*sqlx.DB, error) {
	if !config.Enabled || opts.Command == domain.CommandList {
		logger.Debug("Journal is not in use")
		return nil, nil
	}

	logger.WithField("dsn", config.DSN).Debug("Opening journal database")

	db, err := sqlx.Open("sqlite3", config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open journal database")
	}

	db.MapperFunc(util.SnakeCase)

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create migrate instance")
	}

	m, err := migrate.NewWithDatabaseInstance(config.MigrationsPath, config.DatabaseName, driver)
	if err != nil {
		return nil, errors.Wrap(err, "unable to prepare migrations")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, errors.Wrap(err, "unable to migrate journal database")
	}

	return db, nil
}

func CloseJournalDatabase(lc fx.Lifecycle, db *sqlx.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if db == nil {
				return nil
			}

			return db.Close()
		},
	})
}
